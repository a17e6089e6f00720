package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/teris-io/shortid"
)

// Request 合成请求
type Request struct {
	APIKey        string
	AOI           AOI
	ElevationZoom int
	ImageryZoom   int
	Step          int
}

// Defaults a caller may rely on.
const (
	DefaultElevationZoom = 12
	DefaultImageryZoom   = 14
	DefaultStep          = 2
)

// DefaultRequest returns a request for aoi with the default zooms and step.
func DefaultRequest(apiKey string, aoi AOI) Request {
	return Request{
		APIKey:        apiKey,
		AOI:           aoi,
		ElevationZoom: DefaultElevationZoom,
		ImageryZoom:   DefaultImageryZoom,
		Step:          DefaultStep,
	}
}

// Validate checks the request before any tile is fetched.
func (r Request) Validate() error {
	if err := r.AOI.Validate(); err != nil {
		return err
	}
	for _, z := range []int{r.ElevationZoom, r.ImageryZoom} {
		if z < ZoomMin || z > ZoomMax {
			return fmt.Errorf("%w: zoom %d out of [%d, %d]", ErrInvalidRequest, z, ZoomMin, ZoomMax)
		}
	}
	if r.Step < 1 {
		return fmt.Errorf("%w: step must be >= 1, got %d", ErrInvalidRequest, r.Step)
	}
	return nil
}

// Result is everything one synthesis produced. The task keeps no reference to it.
type Result struct {
	Mesh           *MeshPayload
	Grid           *HeightGrid
	AOI            AOI
	ElevationRange TileRange
	ImageryRange   TileRange
	Annotations    []PlacedAnnotation
}

// Task 合成任务
type Task struct {
	ID          string
	Request     Request
	Encoding    Encoding
	Series      GeodeticSeries
	Assembler   *Assembler
	Annotations []Annotation

	ElevationRange TileRange
	ImageryRange   TileRange

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewTask 创建合成任务. Both ranges come from the same AOI, which is what
// lets the mesh share one UV parametrisation between them.
func NewTask(req Request, asm *Assembler, enc Encoding) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if asm == nil || asm.Fetcher == nil {
		return nil, errors.New("task needs an assembler with a fetcher")
	}
	id, err := shortid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate task id: %w", err)
	}
	task := &Task{
		ID:             id,
		Request:        req,
		Encoding:       enc,
		Series:         WGS84Series,
		Assembler:      asm,
		ElevationRange: RangeForAOI(req.AOI, maptile.Zoom(req.ElevationZoom)),
		ImageryRange:   RangeForAOI(req.AOI, maptile.Zoom(req.ImageryZoom)),
	}
	log.Printf("task %s: elevation %s (%d tiles), imagery %s (%d tiles)",
		id, task.ElevationRange, task.ElevationRange.Count(), task.ImageryRange, task.ImageryRange.Count())
	return task, nil
}

// AbortFun 结束任务
func (task *Task) AbortFun() {
	task.mu.Lock()
	defer task.mu.Unlock()
	if task.cancel != nil {
		task.cancel()
	}
}

// Run assembles both mosaics in parallel, decodes the elevation and builds the
// mesh. Any failure aborts the whole request and is the only error returned.
func (task *Task) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	task.mu.Lock()
	task.cancel = cancel
	task.mu.Unlock()

	var (
		wg        sync.WaitGroup
		once      sync.Once
		firstErr  error
		elevation *Mosaic
		imagery   *Mosaic
	)
	assemble := func(kind Kind, rng TileRange, out **Mosaic) {
		defer wg.Done()
		m, err := task.Assembler.Assemble(ctx, kind, rng)
		if err != nil {
			once.Do(func() {
				firstErr = err
				cancel()
			})
			return
		}
		*out = m
	}
	wg.Add(2)
	go assemble(Elevation, task.ElevationRange, &elevation)
	go assemble(Imagery, task.ImageryRange, &imagery)
	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, firstErr)
	}
	log.Infof("task %s: mosaics %dx%d and %dx%d assembled in %.3fs", task.ID,
		elevation.Width(), elevation.Height(), imagery.Width(), imagery.Height(), time.Since(start).Seconds())

	grid, err := DecodeElevation(elevation, task.Request.Step, task.Encoding)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	lo, hi := grid.MinMax()
	log.Infof("task %s: height grid %dx%d (step %d), %.1fm..%.1fm", task.ID, grid.Width, grid.Height, grid.GridStep, lo, hi)

	aoi := task.Request.AOI
	mesh, err := BuildMesh(grid, imagery.Image, aoi, task.Series.MetersPerDegree(aoi.MidLat()))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	log.Infof("task %s: mesh %d vertices, %d triangles, %.0fm x %.0fm", task.ID,
		mesh.VertexCount(), mesh.TriangleCount(), mesh.SizeX, mesh.SizeZ)

	res := &Result{
		Mesh:           mesh,
		Grid:           grid,
		AOI:            aoi,
		ElevationRange: task.ElevationRange,
		ImageryRange:   task.ImageryRange,
	}
	if len(task.Annotations) > 0 {
		res.Annotations = PlaceAnnotations(mesh, grid, task.ElevationRange, task.Annotations)
	}
	log.Infof("task %s finished in %.3fs", task.ID, time.Since(start).Seconds())
	return res, nil
}

// InitTask runs the configured synthesis and exports the result.
func InitTask() {
	start := time.Now()

	aoi, err := configuredAOI()
	if err != nil {
		log.Errorf("load aoi: %s", err)
		os.Exit(1)
	}
	req := Request{
		APIKey:        conf.Source.APIKey,
		AOI:           aoi,
		ElevationZoom: conf.Terrain.ElevationZoom,
		ImageryZoom:   conf.Terrain.ImageryZoom,
		Step:          conf.Terrain.Step,
	}
	if req.APIKey == "" {
		log.Warnf("no api key configured, tile requests will likely be rejected")
	}

	em := ElevationMap(conf.Source.BaseURL, conf.Source.Elevation.Dataset, req.APIKey)
	em.Format = conf.Source.Elevation.Format
	em.Encoding = conf.Source.Elevation.Encoding
	im := ImageryMap(conf.Source.BaseURL, conf.Source.Imagery.Dataset, req.APIKey)
	im.Format = conf.Source.Imagery.Format

	enc, err := EncodingByName(em.Encoding)
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
	asm := &Assembler{
		Fetcher:   NewHTTPFetcher(em, im, time.Duration(conf.Task.Timeout)*time.Second),
		Workers:   conf.Task.Workers,
		TimeDelay: time.Duration(conf.Task.Timedelay) * time.Millisecond,
		Progress:  conf.Task.Progress,
	}

	task, err := NewTask(req, asm, enc)
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
	if conf.Layers.Geojson != "" {
		task.Annotations, err = LoadAnnotations(conf.Layers.Geojson)
		if err != nil {
			log.Errorf("%s", err)
			os.Exit(1)
		}
	}
	// 注册安全退出
	SafeExitInst.Register(task.AbortFun)

	res, err := task.Run(context.Background())
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}

	if conf.Output.Export {
		dir, err := Export(conf.Output.Directory, task.ID, res)
		if err != nil {
			log.Errorf("export: %s", err)
			os.Exit(1)
		}
		log.Infof("exported to %s", dir)
	}

	secs := time.Since(start).Seconds()
	log.Printf("%.3fs finished...", secs)
}
