package config

// MaxRuntime caps countdown.runtime. Every tick is held in memory until the
// animation is encoded.
const MaxRuntime = 3600

const (
	defaultCacheDir      = "~/.cache/countdown"
	defaultLogDir        = "~/.local/share/countdown/logs"
	defaultTimezone      = "UTC"
	defaultRuntime       = 60
	defaultAnchorX       = 20
	defaultAnchorY       = 60
	defaultOutputFormat  = "gif"
	defaultWorkers       = 1
	defaultFrameDelay    = 100
	defaultFormat        = "{d}:{h}:{m}:{s}"
	defaultPadWidth      = 2
	defaultBgWidth       = 400
	defaultBgHeight      = 120
	defaultBgColor       = "#000000"
	defaultFontSize      = 48
	defaultFontColor     = "#ffffff"
	defaultCacheBackend  = "memory"
	defaultCacheEntries  = 4096
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultCacheFileName = "frames.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir,
			LogDir:   defaultLogDir,
		},
		Countdown: Countdown{
			Timezone:     defaultTimezone,
			Runtime:      defaultRuntime,
			AnchorX:      defaultAnchorX,
			AnchorY:      defaultAnchorY,
			OutputFormat: defaultOutputFormat,
			Workers:      defaultWorkers,
			FrameDelay:   defaultFrameDelay,
		},
		Formatter: Formatter{
			Format: defaultFormat,
			Pads: map[string]int{
				"d": defaultPadWidth,
				"h": defaultPadWidth,
				"m": defaultPadWidth,
				"s": defaultPadWidth,
			},
		},
		Background: Background{
			Width:  defaultBgWidth,
			Height: defaultBgHeight,
			Color:  defaultBgColor,
		},
		Font: Font{
			Size:  defaultFontSize,
			Color: defaultFontColor,
		},
		Cache: Cache{
			Backend:    defaultCacheBackend,
			MaxEntries: defaultCacheEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
