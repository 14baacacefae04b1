package config

import (
	"strings"

	"github.com/spf13/viper"
	"github.com/studyhub/portal/internal/utils"
)

const (
	keyUploadMaxMB      = "upload_max_mb"
	keyUploadExtensions = "upload_extensions"
)

type UploadConfig interface {
	GetUploadMaxMB() int64
	GetUploadExtensions() []string
}

type Upload struct {
	v *viper.Viper
}

var _ UploadConfig = Upload{}

func (u Upload) GetUploadMaxMB() int64 {
	maxMB := u.v.GetInt64(keyUploadMaxMB)
	if maxMB <= 0 {
		return 10
	}
	return maxMB
}

// GetUploadExtensions returns lower-cased extensions, each with a leading dot
func (u Upload) GetUploadExtensions() []string {
	raw := u.v.GetString(keyUploadExtensions)
	extensions := make([]string, 0)
	for _, ext := range utils.SplitList(raw) {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions = append(extensions, ext)
	}
	return extensions
}
