package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"hypisolate.dev/pkg/hypisolate/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "hypisolate"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	outputFlagName       = "output"
	skipDirFlagName      = "skip-dir"
	nativeExtFlagName    = "native-ext"
	unterminatedFlagName = "unterminated"
	verboseFlagName      = "verbose"
	logFileFlagName      = "log-file"

	outputConfigKey       = "output.dir"
	skipDirsConfigKey     = "walk.skip_dirs"
	nativeExtConfigKey    = "extract.native_ext"
	unterminatedConfigKey = "extract.unterminated"

	defaultOutputDir    = "."
	defaultUnterminated = string(domain.UnterminatedKeep)

	envPrefix = "HYPISOLATE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = "hypisolate.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// configReadErr holds the failure from reading the config file at startup.
// It is surfaced by the root command instead of being dropped silently.
var configReadErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(outputConfigKey, defaultOutputDir)
	viper.SetDefault(skipDirsConfigKey, []string{domain.DefaultSkipDir})
	viper.SetDefault(nativeExtConfigKey, domain.DefaultNativeExt)
	viper.SetDefault(unterminatedConfigKey, defaultUnterminated)

	// An empty filename resolves to defaultLogPath() when the logger starts.
	viper.SetDefault(logFilenameKey, "")
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	configReadErr = readConfig()
}

// readConfig loads hypisolate.yaml from the working directory. A missing
// file is not an error; a present but unreadable or malformed one is.
func readConfig() error {
	err := viper.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
}

// defaultLogPath places the log in the per-user cache directory so runs
// never drop a log file into the scanned tree or the output directory.
func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}

	return filepath.Join(dir, configBaseName, defaultLogFilename)
}

// parseSlogLevel accepts slog level names (with offsets such as "info+2"),
// the "warning" alias and bare integers. Anything else yields fallback.
func parseSlogLevel(value string, fallback slog.Level) slog.Level {
	text := strings.TrimSpace(value)
	if text == "" {
		return fallback
	}
	if strings.EqualFold(text, "warning") {
		return slog.LevelWarn
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(text)); err == nil {
		return level
	}
	if n, err := strconv.Atoi(text); err == nil {
		return slog.Level(n)
	}

	return fallback
}

// configureLogger points the default slog logger at a rotating log file and
// returns the file it writes to. verbose forces debug level.
func configureLogger(logPath string, verbose bool) string {
	logPath = strings.TrimSpace(logPath)
	if logPath == "" {
		logPath = defaultLogPath()
	}

	level := parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	if verbose {
		level = slog.LevelDebug
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	globalLogger = slog.New(slog.NewTextHandler(rotator, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}))
	slog.SetDefault(globalLogger)

	return logPath
}

// logResolvedSettings records the effective configuration for the run after
// flags, environment, config file and defaults have been merged.
func logResolvedSettings(command, logPath string) {
	slog.Debug("resolved settings",
		"command", command,
		"config_file", viper.ConfigFileUsed(),
		"output_dir", viper.GetString(outputConfigKey),
		"skip_dirs", viper.GetStringSlice(skipDirsConfigKey),
		"native_ext", viper.GetString(nativeExtConfigKey),
		"unterminated", viper.GetString(unterminatedConfigKey),
		"log_file", logPath,
	)
}
