// Package assets embeds the client script and stylesheet served with the board.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"mime"
	"path"
)

//go:embed client/*
var clientFS embed.FS

// ClientFS returns the embedded client files
func ClientFS() fs.FS {
	sub, err := fs.Sub(clientFS, "client")
	if err != nil {
		panic(err)
	}
	return sub
}

// Get returns the named client file and its content type.
func Get(name string) ([]byte, string, error) {
	if name != path.Base(name) {
		return nil, "", fmt.Errorf("invalid asset name %q", name)
	}
	data, err := fs.ReadFile(ClientFS(), name)
	if err != nil {
		return nil, "", err
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// GetClientJS returns the board client script.
func GetClientJS() ([]byte, error) {
	return fs.ReadFile(clientFS, "client/pinboard.js")
}

// GetClientCSS returns the board stylesheet.
func GetClientCSS() ([]byte, error) {
	return fs.ReadFile(clientFS, "client/pinboard.css")
}
