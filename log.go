package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/shiena/ansicolor"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log = logrus.New()

// InitLog 初始化日志
func InitLog() {
	log = newLogger(conf.Output.LogDir, conf.Output.OutputTerminal, logLevel)
}

func newLogger(logDir string, terminal bool, level string) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logIO := make([]io.Writer, 0)
	if logDir != "" {
		os.MkdirAll(logDir, os.ModePerm)
		logIO = append(logIO, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "tiler.log"),
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     7,
			LocalTime:  true,
		})
	}
	if terminal {
		logIO = append(logIO, os.Stdout)
	}

	// 融合日志输出
	l.SetOutput(ansicolor.NewAnsiColorWriter(io.MultiWriter(logIO...)))

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		l.SetLevel(logrus.InfoLevel)
	} else {
		l.SetLevel(lvl)
	}
	return l
}
