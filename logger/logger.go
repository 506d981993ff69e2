package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"
)

const (
	LOG_ENABLE                 = "FMRIBATCH_LOGLEVEL"
	LOG_PATH                   = "FMRIBATCH_LOGPATH"
	LOG_TIMEOUT                = "FMRIBATCH_TIMEOUT"
	LOG_DEFAULT_TIMEOUT        = 24
	FMRIBATCH_DEBUG_LOGGING    = 10
	FMRIBATCH_INFO_LOGGING     = 20
	FMRIBATCH_WARNING_LOGGING  = 30
	FMRIBATCH_ERROR_LOGGING    = 40
	FMRIBATCH_CRITICAL_LOGGING = 50
)

var (
	Log *log.Logger
)

func init() {
	logPath := "/tmp/"
	if env := os.Getenv(LOG_PATH); len(env) > 0 {
		logPath = env
	}
	timeout := LOG_DEFAULT_TIMEOUT
	if env := os.Getenv(LOG_TIMEOUT); len(env) > 0 {
		if t, err := strconv.Atoi(env); err == nil {
			timeout = t
		}
	}
	logfile := logPath + "fmribatch.log"
	if f, err := os.Open(logfile); err == nil {
		scanner := bufio.NewScanner(f)
		scanner.Scan()
		f.Close()
		if tag, terr := time.Parse(time.RFC3339, scanner.Text()); terr == nil {
			if int(time.Since(tag).Hours()) > timeout {
				os.Remove(logfile)
			}
		} else {
			os.Remove(logfile)
		}
	}
	f, err := os.OpenFile(logfile,
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.Printf("logger cannot open file: %v",
			fmt.Errorf("LogWriter: OpenFile: %w", err))
	}
	if stat, serr := f.Stat(); serr == nil {
		if stat.Size() == 0 {
			f.WriteString(time.Now().Format(time.RFC3339) + "\n")
			f.Sync()
		}
	}
	wrt := io.MultiWriter(os.Stderr, f)
	Log = log.New(wrt, "", log.LstdFlags)
}

func LogLevel() int {
	if env, err := strconv.Atoi(os.Getenv(LOG_ENABLE)); err == nil {
		return env
	}
	return FMRIBATCH_CRITICAL_LOGGING
}

func getLogLevel(level int) string {
	switch level {
	case FMRIBATCH_DEBUG_LOGGING:
		return "DEBUG"
	case FMRIBATCH_INFO_LOGGING:
		return "INFO"
	case FMRIBATCH_WARNING_LOGGING:
		return "WARNING"
	case FMRIBATCH_ERROR_LOGGING:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

func logObj(level int, name string, v interface{}) {
	if LogLevel() <= level {
		data, _ := json.MarshalIndent(v, "", " ")
		Log.Printf("%s %s:\n%s\n", getLogLevel(level), name, data)
	}
}

func logPrintf(level int, format string, a ...interface{}) {
	if LogLevel() <= level {
		prefix := getLogLevel(level) + " "
		Log.Printf(prefix+format, a...)
	}
}

func DebugObj(name string, v interface{}) {
	logObj(FMRIBATCH_DEBUG_LOGGING, name, v)
}

func DebugPrintf(format string, a ...interface{}) {
	logPrintf(FMRIBATCH_DEBUG_LOGGING, format, a...)
}

func InfoObj(name string, v interface{}) {
	logObj(FMRIBATCH_INFO_LOGGING, name, v)
}

func InfoPrintf(format string, a ...interface{}) {
	logPrintf(FMRIBATCH_INFO_LOGGING, format, a...)
}

func WarningObj(name string, v interface{}) {
	logObj(FMRIBATCH_WARNING_LOGGING, name, v)
}

func WarningPrintf(format string, a ...interface{}) {
	logPrintf(FMRIBATCH_WARNING_LOGGING, format, a...)
}

func ErrorObj(name string, v interface{}) {
	logObj(FMRIBATCH_ERROR_LOGGING, name, v)
}

func ErrorPrintf(format string, a ...interface{}) {
	logPrintf(FMRIBATCH_ERROR_LOGGING, format, a...)
}

func CriticalObj(name string, v interface{}) {
	logObj(FMRIBATCH_CRITICAL_LOGGING, name, v)
}

func CriticalPrintf(format string, a ...interface{}) {
	logPrintf(FMRIBATCH_CRITICAL_LOGGING, format, a...)
}
