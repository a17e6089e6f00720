package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var conf *Conf

type Conf struct {
	App struct {
		Version string `toml:"version"`
		Title   string `toml:"title"`
	} `toml:"app"`
	Output struct {
		Directory      string `toml:"directory"`
		LogDir         string `toml:"logDir"`
		OutputTerminal bool   `toml:"outputTerminal"`
		Export         bool   `toml:"export"`
	} `toml:"output"`
	Task struct {
		Workers   int  `toml:"workers"`
		Timedelay int  `toml:"timedelay"`
		Timeout   int  `toml:"timeout"`
		Progress  bool `toml:"progress"`
	} `toml:"task"`
	Source struct {
		BaseURL   string `toml:"baseUrl"`
		APIKey    string `toml:"apiKey"`
		Elevation struct {
			Dataset  string `toml:"dataset"`
			Format   string `toml:"format"`
			Encoding string `toml:"encoding"`
		} `toml:"elevation"`
		Imagery struct {
			Dataset string `toml:"dataset"`
			Format  string `toml:"format"`
		} `toml:"imagery"`
	} `toml:"source"`
	Terrain struct {
		ElevationZoom int    `toml:"elevationZoom"`
		ImageryZoom   int    `toml:"imageryZoom"`
		Step          int    `toml:"step"`
		AOI           AOI    `toml:"aoi"`
		Geojson       string `toml:"geojson"`
	} `toml:"terrain"`
	Layers struct {
		Geojson string `toml:"geojson"`
	} `toml:"layers"`
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("config file(%s) not exist", cfgFile)
		os.Exit(1)
	}
	var err error
	conf, err = loadConf(cfgFile)
	if err != nil {
		panic("配置文件解析失败: " + err.Error())
	}
}

func loadConf(cfgFile string) (*Conf, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(cfgFile)
	v.AutomaticEnv() // read in environment variables that match
	if err := v.BindEnv("source.apiKey", "MAPTILER_KEY"); err != nil {
		return nil, err
	}
	if err := v.ReadInConfig(); err != nil {
		log.Warnf("read config file(%s) error, details: %s", v.ConfigFileUsed(), err)
	}
	setDefaults(v)

	c := new(Conf)
	if err := v.Unmarshal(c); err != nil {
		return nil, err
	}
	return c, nil
}

// 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.version", "v 0.1.0")
	v.SetDefault("app.title", "Terrain Tiler")
	v.SetDefault("output.directory", "output")
	v.SetDefault("output.outputTerminal", true)
	v.SetDefault("output.export", true)
	v.SetDefault("task.workers", 0)
	v.SetDefault("task.timedelay", 0)
	v.SetDefault("task.timeout", 30)
	v.SetDefault("task.progress", true)
	v.SetDefault("source.baseUrl", "https://api.maptiler.com")
	v.SetDefault("source.apiKey", "")
	v.SetDefault("source.elevation.dataset", "terrain-rgb")
	v.SetDefault("source.elevation.format", PNG)
	v.SetDefault("source.elevation.encoding", TerrainRGB.Name)
	v.SetDefault("source.imagery.dataset", "satellite-v2")
	v.SetDefault("source.imagery.format", JPG)
	v.SetDefault("terrain.elevationZoom", DefaultElevationZoom)
	v.SetDefault("terrain.imageryZoom", DefaultImageryZoom)
	v.SetDefault("terrain.step", DefaultStep)
}
