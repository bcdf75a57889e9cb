package types

import "time"

// EngineKind selects the recognition engine implementation.
type EngineKind string

const (
	// EngineTesseract shells out to the tesseract binary per page.
	EngineTesseract EngineKind = "tesseract"
	// EngineGosseract links libtesseract through the gosseract bindings.
	EngineGosseract EngineKind = "gosseract"
)

// OCRConfig holds settings for the recognition stage.
type OCRConfig struct {
	// Engine selects the recognition backend: tesseract or gosseract.
	Engine EngineKind `json:"engine" yaml:"engine"`

	// Language is the "+"-joined language spec passed to the engine
	// (e.g. "chi_sim+eng").
	Language string `json:"language" yaml:"language"`

	// PSM is the page segmentation mode. 6 (single uniform block) suits
	// full-page scans.
	PSM int `json:"psm" yaml:"psm"`

	// OEM is the engine mode for the tesseract binary (3 = default, LSTM
	// preferred). The gosseract engine ignores it.
	OEM int `json:"oem" yaml:"oem"`

	// TessdataDir optionally points at the language-data directory.
	// Empty means the engine's own default.
	TessdataDir string `json:"tessdata_dir,omitempty" yaml:"tessdata_dir,omitempty"`
}

// RasterTool identifies the page rendering backend.
type RasterTool string

const (
	RasterAuto     RasterTool = "auto"
	RasterPdftoppm RasterTool = "pdftoppm"
	RasterMutool   RasterTool = "mutool"
)

// RasterConfig holds settings for the rasterization stage.
type RasterConfig struct {
	// Tool pins a renderer, or "auto" to prefer pdftoppm with a mutool
	// fallback.
	Tool RasterTool `json:"tool" yaml:"tool"`

	// DPI is the rendering resolution (practical range 72-600).
	DPI int `json:"dpi" yaml:"dpi"`

	// Enhance applies grayscale conversion and upscaling of small renders
	// before recognition.
	Enhance bool `json:"enhance" yaml:"enhance"`
}

// ProcessingConfig holds pipeline scheduling settings.
type ProcessingConfig struct {
	// MaxWorkers bounds concurrent in-flight pages (minimum 1).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// PageTimeout bounds the processing time of a single page.
	// Zero means unbounded.
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout"`

	// TempDir is the parent for per-run scratch directories. Empty uses
	// the system temp directory.
	TempDir string `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`

	// KeepTemp retains the scratch directory after the run.
	KeepTemp bool `json:"keep_temp" yaml:"keep_temp"`
}

// MarshalYAML renders PageTimeout in duration notation ("30s") rather than
// raw nanoseconds.
func (c ProcessingConfig) MarshalYAML() (any, error) {
	return struct {
		MaxWorkers  int    `yaml:"max_workers"`
		PageTimeout string `yaml:"page_timeout"`
		TempDir     string `yaml:"temp_dir,omitempty"`
		KeepTemp    bool   `yaml:"keep_temp"`
	}{
		MaxWorkers:  c.MaxWorkers,
		PageTimeout: c.PageTimeout.String(),
		TempDir:     c.TempDir,
		KeepTemp:    c.KeepTemp,
	}, nil
}

// OutputFormat selects an output artifact format.
type OutputFormat string

const (
	FormatText OutputFormat = "txt"
	FormatDocx OutputFormat = "docx"
)

// OutputConfig holds settings for the output stage.
type OutputConfig struct {
	// Directory receives the output artifacts.
	Directory string `json:"directory" yaml:"directory"`

	// Formats lists the artifact formats to write.
	Formats []OutputFormat `json:"formats" yaml:"formats"`

	// PreserveFormatting enables page separators and structure detection
	// in text assembly. Off produces a plain concatenation.
	PreserveFormatting bool `json:"preserve_formatting" yaml:"preserve_formatting"`

	// SaveImages copies each rendered page image into ImagesDir.
	SaveImages bool `json:"save_images" yaml:"save_images"`

	// ImagesDir is the destination for saved page images.
	ImagesDir string `json:"images_dir" yaml:"images_dir"`

	// Stats also writes the human-readable report artifact.
	Stats bool `json:"stats" yaml:"stats"`
}

// ArchiveConfig holds settings for the local run archive.
type ArchiveConfig struct {
	// Enabled indexes completed runs into the archive.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding the archive database.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default cap on search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all stage configurations for one run.
type Config struct {
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Raster     RasterConfig     `json:"raster" yaml:"raster"`
	Processing ProcessingConfig `json:"processing" yaml:"processing"`
	Output     OutputConfig     `json:"output" yaml:"output"`

	// ConfidenceThreshold flags pages below this confidence (0-100) in
	// reports and annotations.
	ConfidenceThreshold int `json:"confidence_threshold" yaml:"confidence_threshold"`

	Archive ArchiveConfig `json:"archive" yaml:"archive"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		OCR: OCRConfig{
			Engine:   EngineTesseract,
			Language: "chi_sim+eng",
			PSM:      6,
			OEM:      3,
		},
		Raster: RasterConfig{
			Tool:    RasterAuto,
			DPI:     300,
			Enhance: true,
		},
		Processing: ProcessingConfig{
			MaxWorkers: 4,
		},
		Output: OutputConfig{
			Directory:          "output",
			Formats:            []OutputFormat{FormatText},
			PreserveFormatting: true,
			ImagesDir:          "output/images",
		},
		ConfidenceThreshold: 60,
		Archive: ArchiveConfig{
			Dir:        "archive",
			MaxResults: 20,
		},
	}
}
