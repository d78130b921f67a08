package util

import (
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
	"net/http"
	"runtime"
	"strings"
	"unicode"
)

func Stats() func() {
	return func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		log.Debug().Msgf("Alloc: %d MB, TotalAlloc: %d MB, Requested: %d MB",
			ms.Alloc/1024/1024, ms.TotalAlloc/1024/1024, ms.Sys/1024/1024)
		log.Debug().Msgf("Mallocs: %d, Frees: %d, GC: %d", ms.Mallocs, ms.Frees, ms.NumGC)
		log.Debug().Msgf("HeapAlloc: %d MB, HeapSys: %d MB, HeapIdle: %d MB",
			ms.HeapAlloc/1024/1024, ms.HeapSys/1024/1024, ms.HeapIdle/1024/1024)
		log.Debug().Msgf("HeapObjects: %d", ms.HeapObjects)
	}
}

func ApplyCliSettings(verbose bool, profile bool, pprofPort uint16) {
	if verbose {
		log.Warn().Msgf("Verbosity up")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if profile {
		log.Info().Msgf("Profiling is enabled for this session. Server will listen on port %d", pprofPort)
		go func() {
			if err := http.ListenAndServe(fmt.Sprintf(":%d", pprofPort), nil); err != nil {
				log.Error().Err(err).Msgf("Error starting profiling server on port %d", pprofPort)
				return
			}
		}()
	}
}

func CheckDiskSpace(fileName string, sizeGb int) {
	warn := false
	if parts, err := disk.Partitions(false); err == nil {
		for _, part := range parts {
			if strings.Index(fileName, part.Mountpoint) >= 0 {
				if usage, err := disk.Usage(part.Mountpoint); err == nil {
					warn = false
					log.Debug().Msgf("%s has %.2f GiB free", part.Mountpoint, float64(usage.Free)/(1024*1024*1024))
					required := uint64(sizeGb * 1024 * 1024 * 1024)
					if required > usage.Free {
						log.Fatal().Msgf("Drive %s does not have sufficient space free (%d GB) for the download. Please free some space before trying again", part.Mountpoint, sizeGb)
					}
				} else {
					log.Debug().Err(err).Msgf("Error getting current storage sizes")
				}
			}
		}
	} else {
		log.Debug().Err(err).Msgf("Error getting current storage sizes")
	}

	if warn {
		log.Warn().Msgf("IMPORTANT: The haveibeenpwned password file is very large, please ensure you have at least %dGiB free for the download.", sizeGb)
	}
}

// ToScreamingSnakeCase converts a CamelCase field name to the ENV_VAR
// form used in config error messages.
func ToScreamingSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if !unicode.IsUpper(prev) && prev != '_' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
