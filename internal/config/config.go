package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Frontend Frontend `koanf:"frontend"`
	Storage  Storage  `koanf:"storage"`
	Database Database `koanf:"db"`
	Catalog  Catalog  `koanf:"catalog"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type StorageDriver string

const (
	MemoryDriver   StorageDriver = "memory"
	FileDriver     StorageDriver = "file"
	SQLiteDriver   StorageDriver = "sqlite"
	PostgresDriver StorageDriver = "postgres"
)

type Storage struct {
	Driver     StorageDriver `koanf:"driver"`
	Dir        string        `koanf:"dir"`
	SQLitePath string        `koanf:"sqlitepath"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Catalog.Path points at a YAML place catalog; empty means the built-in one.
type Catalog struct {
	Path string `koanf:"path"`
}

func Defaults() Application {
	return Application{
		Listen: ":8181",
		Frontend: Frontend{
			Enabled: true,
			Dir:     "frontend",
		},
		Storage: Storage{
			Driver:     FileDriver,
			Dir:        "data",
			SQLitePath: "data/roamly.db",
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "roamly",
			Pass:   "",
			Name:   "roamly",
			Schema: "roamly",
		},
	}
}

// Load layers the built-in defaults, the YAML file at path (if present) and
// ROAMLY_* environment variables, in that order.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: "ROAMLY_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ROAMLY_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// LoadEnvFile exports the variables of a .env file into the process environment so
// Load picks them up. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	log.Infof("Loaded environment from %s", path)
	return nil
}
