package layers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/layerfang/pkg/layers"
)

func declared() layers.Names {
	return layers.NewNames([]string{"domain", "dataset", "adaptor", "service"})
}

func TestFileLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		relPath string
		want    string
	}{
		{name: "file directly in root", relPath: "settings.py", want: layers.Root},
		{name: "declared layer", relPath: "domain/user.py", want: "domain"},
		{name: "declared layer nested", relPath: "adaptor/db/session.py", want: "adaptor"},
		{name: "undeclared directory", relPath: "helpers/util.py", want: layers.Other},
		{name: "layer name as file in root", relPath: "domain.py", want: layers.Root},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, layers.FileLayer(tt.relPath, declared()))
		})
	}
}

func TestImportLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module string
		want   string
	}{
		{name: "empty module", module: "", want: layers.Other},
		{name: "package itself", module: "mypkg", want: layers.Root},
		{name: "declared layer", module: "mypkg.domain.user", want: "domain"},
		{name: "declared layer bare", module: "mypkg.adaptor", want: "adaptor"},
		{name: "package-root module", module: "mypkg.settings", want: layers.Root},
		{name: "third party", module: "requests", want: layers.Other},
		{name: "third party dotted", module: "os.path", want: layers.Other},
		{name: "prefix but not package", module: "mypkgextra.domain", want: layers.Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, layers.ImportLayer(tt.module, "mypkg", declared()))
		})
	}
}

func TestIsReserved(t *testing.T) {
	t.Parallel()

	assert.True(t, layers.IsReserved(layers.Root))
	assert.True(t, layers.IsReserved(layers.Other))
	assert.False(t, layers.IsReserved("domain"))
}
