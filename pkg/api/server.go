// Package api provides the REST API server for smfcodec
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/smf"
)

// @title smfcodec API
// @version 1.0
// @description API for decoding, encoding and converting Standard MIDI Files
// @host localhost:8080
// @BasePath /api/v1

// maxUpload bounds request bodies
const maxUpload = 32 << 20

// StartServer starts the API server on the specified port
func StartServer(port int, opts converter.Options) error {
	return NewRouter(opts).Run(fmt.Sprintf(":%d", port))
}

// NewRouter builds the gin engine with every route registered
func NewRouter(opts converter.Options) *gin.Engine {
	r := gin.Default()
	h := &handlers{opts: opts}

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.POST("/decode", h.handleDecode)
		v1.POST("/encode", h.handleEncode)
		v1.POST("/inspect", h.handleInspect)
		v1.POST("/verify", h.handleVerify)
		v1.POST("/normalize", h.handleNormalize)
		v1.POST("/convert/:from/:to", h.handleConvert)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type handlers struct {
	opts converter.Options
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smfcodec",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the supported file formats, conversions and running status policies
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"midi", "json", "syx"},
		"conversions": converter.GetSupportedConversions(),
		"policies": []string{
			smf.PreserveRunningStatus.String(),
			smf.ExplicitStatus.String(),
			smf.CompactStatus.String(),
		},
	})
}

// handleDecode godoc
// @Summary Decode MIDI to JSON
// @Description Upload a MIDI file and receive its chunks as JSON
// @Tags codec
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to decode"
// @Param strict query bool false "Reject undefined status bytes"
// @Success 200 {array} object
// @Failure 400 {object} map[string]string
// @Router /api/v1/decode [post]
func (h *handlers) handleDecode(c *gin.Context) {
	h.respond(c, converter.FormatMIDI, converter.FormatJSON)
}

// handleEncode godoc
// @Summary Encode JSON to MIDI
// @Description Upload a JSON chunk dump and receive a MIDI file
// @Tags codec
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "JSON chunk dump"
// @Param policy query string false "Running status policy: preserve, explicit or compact"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/encode [post]
func (h *handlers) handleEncode(c *gin.Context) {
	h.respond(c, converter.FormatJSON, converter.FormatMIDI)
}

// handleNormalize godoc
// @Summary Re-encode MIDI
// @Description Decode a MIDI file and encode it again with the chosen running status policy
// @Tags codec
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file"
// @Param policy query string false "Running status policy: preserve, explicit or compact"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/normalize [post]
func (h *handlers) handleNormalize(c *gin.Context) {
	h.respond(c, converter.FormatMIDI, converter.FormatMIDI)
}

// handleConvert godoc
// @Summary Convert between formats
// @Description Upload a file and convert it between midi, json and syx
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param from path string true "Source format"
// @Param to path string true "Target format"
// @Param file formData file true "File to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/convert/{from}/{to} [post]
func (h *handlers) handleConvert(c *gin.Context) {
	from := converter.ParseFormat(c.Param("from"))
	to := converter.ParseFormat(c.Param("to"))
	if from == converter.FormatUnknown || to == converter.FormatUnknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}
	h.respond(c, from, to)
}

// handleInspect godoc
// @Summary Summarise a MIDI file
// @Description Upload a MIDI file and receive its header, track and chunk summary
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Success 200 {object} converter.Summary
// @Failure 400 {object} map[string]string
// @Router /api/v1/inspect [post]
func (h *handlers) handleInspect(c *gin.Context) {
	conv, data, _, ok := h.prepare(c)
	if !ok {
		return
	}
	summary, err := conv.Inspect(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleVerify godoc
// @Summary Cross-check a MIDI file
// @Description Decode a MIDI file with smfcodec and gomidi and compare the channel messages per track
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file"
// @Success 200 {object} converter.VerifyReport
// @Failure 400 {object} map[string]string
// @Router /api/v1/verify [post]
func (h *handlers) handleVerify(c *gin.Context) {
	conv, data, _, ok := h.prepare(c)
	if !ok {
		return
	}
	report, err := conv.Verify(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handlers) respond(c *gin.Context, from, to converter.Format) {
	conv, data, name, ok := h.prepare(c)
	if !ok {
		return
	}

	result, err := conv.Convert(data, from, to)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var contentType, outputExt string
	switch to {
	case converter.FormatMIDI:
		contentType, outputExt = "audio/midi", ".mid"
	case converter.FormatJSON:
		contentType, outputExt = "application/json", ".json"
	default:
		contentType, outputExt = "application/octet-stream", ".syx"
	}

	// Generate output filename
	outputName := "converted" + outputExt
	if base := strings.TrimSuffix(name, filepath.Ext(name)); base != "" {
		outputName = base + outputExt
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}

// prepare reads the upload and applies the strict and policy query
// parameters to a copy of the server options
func (h *handlers) prepare(c *gin.Context) (*converter.Converter, []byte, string, bool) {
	opts := h.opts
	if v := c.Query("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid strict parameter"})
			return nil, nil, "", false
		}
		opts.Strict = strict
	}
	if v := c.Query("policy"); v != "" {
		policy, err := smf.ParseRunningStatusPolicy(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, nil, "", false
		}
		opts.Policy = policy
	}

	data, name, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, "", false
	}
	return converter.New(opts), data, name, true
}

// readUpload accepts a multipart "file" field or a raw request body
func readUpload(c *gin.Context) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			return nil, "", errors.New("No file uploaded")
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", errors.New("Failed to read file")
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, "", errors.New("Failed to read request body")
	}
	if len(data) == 0 {
		return nil, "", errors.New("No file uploaded")
	}
	return data, "", nil
}
