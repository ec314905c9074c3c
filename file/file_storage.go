package file

import (
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/errors"
)

//FileStorage read-only access to named files below a storage root
type FileStorage interface {
	Exists(fileName string) (ok bool, err error)
	Open(fileName string) (reader io.ReadCloser, err error)
}

// cleanName turns a request relative name into a slash separated path that stays below the root
func cleanName(fileName string) (string, bool) {
	name := path.Clean("/" + strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.TrimPrefix(name, "/")
	if name == "" || name == "." {
		return "", false
	}
	return name, true
}

//LocalFileSystem files under a directory of the local file system
type LocalFileSystem struct {
	Root string
}

// LocalPath path of fileName on disk, false when the name is empty or escapes the root
func (fs *LocalFileSystem) LocalPath(fileName string) (string, bool) {
	name, ok := cleanName(fileName)
	if !ok {
		return "", false
	}
	return filepath.Join(fs.Root, filepath.FromSlash(name)), true
}

func (fs *LocalFileSystem) Exists(fileName string) (bool, error) {
	p, ok := fs.LocalPath(fileName)
	if !ok {
		return false, nil
	}
	info, err := os.Stat(p)
	if err != nil && os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// directories are not served
	return !info.IsDir(), nil
}

func (fs *LocalFileSystem) Open(fileName string) (io.ReadCloser, error) {
	p, ok := fs.LocalPath(fileName)
	if !ok {
		return nil, errors.Errorf("invalid file name:%q", fileName)
	}
	return os.Open(p)
}

func (fs *LocalFileSystem) String() string {
	return "file://" + filepath.ToSlash(fs.Root)
}

//FTPFileSystem files under a directory of an ftp server
type FTPFileSystem struct {
	Host        string
	Port        int
	User        string
	Password    string
	ConnTimeout time.Duration
	Root        string
}

func (fs *FTPFileSystem) connect() (*ftp.ServerConn, error) {
	c, err := ftp.Dial(fmt.Sprintf("%s:%d", fs.Host, fs.Port), ftp.DialWithTimeout(fs.ConnTimeout))
	if err != nil {
		return nil, err
	}
	user, password := fs.User, fs.Password
	if user == "" {
		user, password = "anonymous", "anonymous"
	}
	if err = c.Login(user, password); err != nil {
		c.Quit()
		return nil, err
	}
	return c, nil
}

func (fs *FTPFileSystem) remotePath(fileName string) (string, bool) {
	name, ok := cleanName(fileName)
	if !ok {
		return "", false
	}
	return path.Join("/", fs.Root, name), true
}

func (fs *FTPFileSystem) Exists(fileName string) (bool, error) {
	p, ok := fs.remotePath(fileName)
	if !ok {
		return false, nil
	}
	c, err := fs.connect()
	if err != nil {
		return false, err
	}
	defer c.Quit()

	_, err = c.FileSize(p)
	if err == nil {
		return true, nil
	}
	if e, ok := err.(*textproto.Error); ok && e.Code == ftp.StatusFileUnavailable {
		return false, nil
	}
	return false, err
}

func (fs *FTPFileSystem) Open(fileName string) (io.ReadCloser, error) {
	p, ok := fs.remotePath(fileName)
	if !ok {
		return nil, errors.Errorf("invalid file name:%q", fileName)
	}
	c, err := fs.connect()
	if err != nil {
		return nil, err
	}
	r, err := c.Retr(p)
	if err != nil {
		c.Quit()
		return nil, err
	}
	return &ftpReader{Response: r, conn: c}, nil
}

func (fs *FTPFileSystem) String() string {
	return fmt.Sprintf("ftp://%s:%d%s", fs.Host, fs.Port, path.Join("/", fs.Root))
}

// ftpReader keeps the control connection open until the transfer is read
type ftpReader struct {
	*ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpReader) Close() error {
	err := r.Response.Close()
	if e := r.conn.Quit(); err == nil {
		err = e
	}
	return err
}
