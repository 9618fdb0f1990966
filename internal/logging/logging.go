package logging

import (
	"io"
	"log"
	"os"

	"github.com/juju/lumberjack/v2"
)

// Setup sends the standard logger to stderr and to a rotating file at path.
// The returned closer flushes and closes the file; callers defer it.
func Setup(path string) io.Closer {
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return file
}
