package settings

import (
	_ "embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/reusee/metaloop/configs"
	"github.com/reusee/metaloop/logs"
)

//go:embed schema.cue
var Schema string

var filenames = []string{
	"metaloop.cue",
	".metaloop.cue",
}

// searchDirs lists directories in precedence order.
func searchDirs() (ret []string) {
	if dir, err := os.Getwd(); err == nil {
		ret = append(ret, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		ret = append(ret, filepath.Join(dir, "metaloop"), dir)
	}
	ret = append(ret, "/etc")
	return
}

func ConfigPaths(dirs []string) (paths []string) {
	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	paths := ConfigPaths(searchDirs())
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}
	return configs.NewLoader(paths, Schema)
}

// LoadDotEnv reads .env from the working directory into the process
// environment. Existing variables are not overridden and a missing file is
// not an error.
func LoadDotEnv(logger logs.Logger, paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		logger.Info("env file", "path", path)
	}
	return nil
}
