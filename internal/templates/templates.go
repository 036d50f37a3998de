// Package templates holds the embedded template store and renders it.
//
// Files ending in .tmpl are text/template sources evaluated against a
// Context; everything else is copied byte for byte.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"github.com/dop251/goja"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

const Suffix = ".tmpl"

//go:embed all:files
var embedded embed.FS

// Builtin returns the template store shipped with the binary, rooted so that
// names look like "global/package.json.tmpl".
func Builtin() fs.FS {
	sub, err := fs.Sub(embedded, "files")
	if err != nil {
		panic(err)
	}
	return sub
}

// IsTemplate reports whether src is rendered rather than copied.
func IsTemplate(src string) bool {
	return strings.HasSuffix(src, Suffix)
}

// Read returns the raw bytes of a store entry.
func Read(store fs.FS, src string) ([]byte, error) {
	data, err := fs.ReadFile(store, src)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeTemplate, err, "read template %s", src)
	}
	return data, nil
}

// Render evaluates src against ctx. Referencing a variable the context does
// not define is an error.
func Render(store fs.FS, src string, ctx Context) ([]byte, error) {
	raw, err := Read(store, src)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(path.Base(src)).
		Option("missingkey=error").
		Funcs(funcs).
		Parse(string(raw))
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeTemplate, err, "parse template %s", src)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx.Data()); err != nil {
		return nil, errdef.Wrap(errdef.CodeTemplate, err, "render template %s", src)
	}
	return buf.Bytes(), nil
}

var funcs = template.FuncMap{
	"json": func(s string) (string, error) {
		b, err := json.Marshal(s)
		return string(b), err
	},
}

// Lint checks rendered output whose syntax can be verified cheaply. dest
// selects the checker by extension; unknown extensions pass.
func Lint(dest string, data []byte) error {
	switch strings.ToLower(path.Ext(dest)) {
	case ".js":
		if _, err := goja.Compile(dest, string(data), false); err != nil {
			return errdef.Wrap(errdef.CodeTemplate, err, "%s is not valid javascript", dest)
		}
	case ".json":
		if !json.Valid(data) {
			var v any
			err := json.Unmarshal(data, &v)
			return errdef.Wrap(errdef.CodeTemplate, err, "%s is not valid json", dest)
		}
	}
	return nil
}

// Entry is one file in a template store.
type Entry struct {
	Name   string
	Size   int64
	Render bool
}

// Files lists every regular file in store, sorted by name.
func Files(store fs.FS) ([]Entry, error) {
	var entries []Entry
	err := fs.WalkDir(store, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Name: name, Size: info.Size(), Render: IsTemplate(name)})
		return nil
	})
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeTemplate, err, "list templates")
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}
