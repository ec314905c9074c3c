package sample

import "github.com/chararch/gobatch-sample/web"

// LogsPattern url pattern exposing the log directory
const LogsPattern = "/logs/**"

//LogResources maps /logs/** to the log locations, on top of the web defaults
type LogResources struct {
	Locations []string
}

func (r *LogResources) AddResourceHandlers(registry *web.ResourceHandlerRegistry) {
	registry.AddResourceHandler(LogsPattern).AddResourceLocations(r.Locations...)
}
