package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/coursechat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config keys, in viper's dotted notation.
const (
	keyServer          = "server"
	keyCourse          = "course"
	keyUser            = "user"
	keyPassword        = "password"
	keyTranscript      = "transcript"
	keyLogFile         = "log_file"
	keyLogFormat       = "log_format"
	keyDebug           = "debug"
	keyRevisionEvery   = "revision.every"
	keyRevisionOverlap = "revision.overlap"
)

const envPrefix = "COURSECHAT"

// Log formats accepted by log_format.
const (
	logFormatText   = "text"
	logFormatPretty = "pretty"
	logFormatJSON   = "json"
)

// settings is the resolved configuration of one run.
type settings struct {
	Server     string
	Course     string
	User       string
	Password   string
	Transcript string
	LogFile    string
	LogFormat  string
	Debug      bool
	Revision   coursechat.RevisionSchedule
}

// defaultDir returns ~/.coursechat, or .coursechat when there is no home.
func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".coursechat")
}

// initViper creates a viper instance reading, from highest to lowest
// precedence: bound flags, COURSECHAT_* environment variables,
// <configDir>/config.toml, and defaults. A missing config file is not an
// error.
func initViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, configDir)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// COURSECHAT_SERVER, COURSECHAT_REVISION_EVERY, etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	r := coursechat.DefaultRevisionSchedule()
	v.SetDefault(keyServer, "http://localhost:5000")
	v.SetDefault(keyCourse, "")
	v.SetDefault(keyUser, "")
	v.SetDefault(keyPassword, "")
	v.SetDefault(keyTranscript, "")
	v.SetDefault(keyLogFile, filepath.Join(configDir, "coursechat.log"))
	v.SetDefault(keyLogFormat, logFormatText)
	v.SetDefault(keyDebug, false)
	v.SetDefault(keyRevisionEvery, r.Every)
	v.SetDefault(keyRevisionOverlap, r.Overlap)
}

// loadSettings reads and checks the configuration. The transcript path
// defaults to one cache file per course under configDir.
func loadSettings(v *viper.Viper, configDir string) (settings, error) {
	s := settings{
		Server:     v.GetString(keyServer),
		Course:     strings.TrimSpace(v.GetString(keyCourse)),
		User:       v.GetString(keyUser),
		Password:   v.GetString(keyPassword),
		Transcript: v.GetString(keyTranscript),
		LogFile:    v.GetString(keyLogFile),
		LogFormat:  strings.ToLower(v.GetString(keyLogFormat)),
		Debug:      v.GetBool(keyDebug),
		Revision: coursechat.RevisionSchedule{
			Every:   v.GetInt(keyRevisionEvery),
			Overlap: v.GetInt(keyRevisionOverlap),
		},
	}

	if s.Course == "" {
		return settings{}, fmt.Errorf("course is required (--course or %s_COURSE): %w", envPrefix, coursechat.ErrValidation)
	}
	if s.Server == "" {
		return settings{}, fmt.Errorf("server is required: %w", coursechat.ErrValidation)
	}
	if s.Revision.Every < 1 {
		return settings{}, fmt.Errorf("revision.every must be positive, got %d: %w", s.Revision.Every, coursechat.ErrValidation)
	}
	if s.Revision.Overlap < 0 || s.Revision.Overlap >= s.Revision.Every {
		return settings{}, fmt.Errorf("revision.overlap must be in [0, %d), got %d: %w", s.Revision.Every, s.Revision.Overlap, coursechat.ErrValidation)
	}
	switch s.LogFormat {
	case logFormatText, logFormatPretty, logFormatJSON:
	default:
		return settings{}, fmt.Errorf("unknown log_format %q: %w", s.LogFormat, coursechat.ErrValidation)
	}
	if s.Transcript == "" {
		s.Transcript = filepath.Join(configDir, "transcripts", s.Course+".json")
	}
	return s, nil
}

// Flag is the single source of truth for a CLI flag. Flags are registered
// and bound by registry key so names and config keys cannot drift.
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

var flags = FlagSet{
	keyServer:          {Name: "server", Shorthand: "s", ViperKey: keyServer, Description: "Tutor server URL"},
	keyCourse:          {Name: "course", Shorthand: "c", ViperKey: keyCourse, Description: "Course ID to chat about"},
	keyUser:            {Name: "user", Shorthand: "u", ViperKey: keyUser, Description: "Username for the tutor server login"},
	keyPassword:        {Name: "password", ViperKey: keyPassword, Description: "Password for the tutor server login"},
	keyTranscript:      {Name: "transcript", Shorthand: "t", ViperKey: keyTranscript, Description: "Transcript cache file (default <config-dir>/transcripts/<course>.json)"},
	keyLogFile:         {Name: "log-file", ViperKey: keyLogFile, Description: "Log file path"},
	keyLogFormat:       {Name: "log-format", ViperKey: keyLogFormat, Description: "Log format: text, pretty, json"},
	keyDebug:           {Name: "debug", ViperKey: keyDebug, Description: "Enable debug logging"},
	keyRevisionEvery:   {Name: "revision-every", ViperKey: keyRevisionEvery, Description: "Questions before the first revision"},
	keyRevisionOverlap: {Name: "revision-overlap", ViperKey: keyRevisionOverlap, Description: "Questions shared between consecutive revisions"},
}

// flagKeys lists every registered flag in help order.
var flagKeys = []string{
	keyServer, keyCourse, keyUser, keyPassword, keyTranscript,
	keyLogFile, keyLogFormat, keyDebug, keyRevisionEvery, keyRevisionOverlap,
}

// addFlags registers every flag in fs on cmd. Defaults shown in help come
// from a viper instance holding only defaults.
func addFlags(cmd *cobra.Command, fs FlagSet, keys []string, configDir string) {
	d := viper.New()
	setDefaults(d, configDir)
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		switch d.Get(def.ViperKey).(type) {
		case bool:
			cmd.Flags().BoolP(def.Name, def.Shorthand, d.GetBool(def.ViperKey), def.Description)
		case int:
			cmd.Flags().IntP(def.Name, def.Shorthand, d.GetInt(def.ViperKey), def.Description)
		default:
			cmd.Flags().StringP(def.Name, def.Shorthand, d.GetString(def.ViperKey), def.Description)
		}
	}
}

// bindFlags binds registered flags to viper so a flag set on the command
// line wins over env, file, and default.
func bindFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}
		_ = v.BindPFlag(def.ViperKey, f)
	}
}
