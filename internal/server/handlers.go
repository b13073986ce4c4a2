package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/image-change-mcp/internal/detection"
	"github.com/ironsheep/image-change-mcp/internal/imaging"
	"github.com/ironsheep/image-change-mcp/internal/ocr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_compare").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// For detector failures the data field reads "<Tag>: <reason>".
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", errorData(err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_compare":
		return s.handleImageCompare(args)
	case "image_similarity":
		return s.handleImageSimilarity(args)
	case "image_load":
		return s.handleImageLoad(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// errorData formats err for the error response's data field.
func errorData(err error) string {
	if tag := detection.ErrorTag(err); tag != "" {
		return tag + ": " + err.Error()
	}
	return err.Error()
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs decodes tool arguments into v, rejecting unknown fields.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", detection.ErrInvalidOptions, err)
	}
	return nil
}

// === Image source handling ===

// sourceArgs names the two images of a comparison.
type sourceArgs struct {
	BeforePath   string `json:"before_path"`
	BeforeBase64 string `json:"before_base64"`
	AfterPath    string `json:"after_path"`
	AfterBase64  string `json:"after_base64"`

	WindowSize *int     `json:"window_size"`
	BlurSigma  *float64 `json:"blur_sigma"`
}

func (s *Server) loadSources(a sourceArgs) (before, after *imaging.Source, err error) {
	before, err = s.loadSource("before", a.BeforePath, a.BeforeBase64)
	if err != nil {
		return nil, nil, err
	}
	after, err = s.loadSource("after", a.AfterPath, a.AfterBase64)
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// loadSource resolves one image from exactly one of path or base64 data.
// Paths go through the server's cache.
func (s *Server) loadSource(which, path, data string) (*imaging.Source, error) {
	switch {
	case path != "" && data != "":
		return nil, fmt.Errorf("%w: give either %s_path or %s_base64, not both", detection.ErrInvalidOptions, which, which)
	case path == "" && data == "":
		return nil, fmt.Errorf("%w: %s image is required (%s_path or %s_base64)", detection.ErrInvalidImage, which, which, which)
	case path != "":
		src, err := s.cache.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", detection.ErrInvalidImage, which, err)
		}
		return src, nil
	}

	raw, err := decodeBase64(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: invalid base64: %v", detection.ErrInvalidImage, which, err)
	}
	src, err := imaging.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", detection.ErrInvalidImage, which, err)
	}
	return src, nil
}

// decodeBase64 accepts plain base64 or a data URL.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, errors.New("malformed data URL")
		}
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

// === Comparison Handlers ===

type imageCompareArgs struct {
	sourceArgs

	Threshold *float64 `json:"threshold"`
	TopN      *int     `json:"top_n"`
	MinArea   *int     `json:"min_area"`
	Annotate  *bool    `json:"annotate"`

	ReadText bool   `json:"read_text"`
	Language string `json:"language"`

	BeforeDate string `json:"before_date"`
	AfterDate  string `json:"after_date"`
	Location   string `json:"location"`
}

// options layers the per-call overrides on top of the server defaults.
func (s *Server) options(a imageCompareArgs) detection.Options {
	opts := s.applySourceOverrides(a.sourceArgs)
	if a.Threshold != nil {
		opts.Threshold = *a.Threshold
	}
	if a.TopN != nil {
		opts.TopN = *a.TopN
	}
	if a.MinArea != nil {
		opts.MinArea = *a.MinArea
	}
	if a.Annotate != nil {
		opts.Annotate = *a.Annotate
	}
	if a.BeforeDate != "" || a.AfterDate != "" || a.Location != "" {
		opts.Metadata = &detection.Metadata{
			BeforeDate: a.BeforeDate,
			AfterDate:  a.AfterDate,
			Location:   a.Location,
		}
	}
	return opts
}

func (s *Server) applySourceOverrides(a sourceArgs) detection.Options {
	opts := s.opts
	if a.WindowSize != nil {
		opts.WindowSize = *a.WindowSize
	}
	if a.BlurSigma != nil {
		opts.BlurSigma = *a.BlurSigma
	}
	return opts
}

// regionText pairs OCR output with the rank of the region it was read from.
type regionText struct {
	Rank int `json:"rank"`
	ocr.RegionText
}

type imageCompareResult struct {
	*detection.Report
	RegionText []regionText `json:"region_text,omitempty"`
}

func (s *Server) handleImageCompare(args json.RawMessage) (interface{}, error) {
	var a imageCompareArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	opts := s.options(a)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	before, after, err := s.loadSources(a.sourceArgs)
	if err != nil {
		return nil, err
	}

	res, err := detection.Detect(before.Image, after.Image, opts)
	if err != nil {
		return nil, err
	}
	report, err := detection.NewReport(res, after.Format, opts)
	if err != nil {
		return nil, err
	}
	s.debugf("compared %dx%d: %.1f%% %s, %d regions", report.Width, report.Height,
		report.SimilarityPercent, report.ChangeLevel, report.RegionCount)

	out := &imageCompareResult{Report: report}
	if a.ReadText && len(report.Regions) > 0 {
		texts, err := s.readRegionText(res, a.Language)
		if err != nil {
			return nil, err
		}
		out.RegionText = texts
	}
	return out, nil
}

// readRegionText runs OCR over every reported region of the normalized
// "after" image.
func (s *Server) readRegionText(res *detection.Result, language string) ([]regionText, error) {
	if language == "" {
		language = s.language
	}

	regions := res.Extraction.Regions
	boxes := make([]image.Rectangle, len(regions))
	for i, r := range regions {
		boxes[i] = r.Bounds()
	}

	texts, err := ocr.ReadRegions(res.After, boxes, language)
	if err != nil {
		return nil, fmt.Errorf("failed to read region text: %w", err)
	}

	out := make([]regionText, len(texts))
	for i, t := range texts {
		out[i] = regionText{Rank: regions[i].Rank, RegionText: t}
	}
	return out, nil
}

type imageSimilarityResult struct {
	SimilarityPercent float64               `json:"similarityPercent"`
	ChangeLevel       detection.ChangeLevel `json:"changeLevel"`
	ChangeDescription string                `json:"changeDescription"`
	Width             int                   `json:"width"`
	Height            int                   `json:"height"`
	Resized           bool                  `json:"resized"`
}

func (s *Server) handleImageSimilarity(args json.RawMessage) (interface{}, error) {
	var a sourceArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	opts := s.applySourceOverrides(a)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	before, after, err := s.loadSources(a)
	if err != nil {
		return nil, err
	}

	norm, err := detection.Normalize(before.Image, after.Image, opts)
	if err != nil {
		return nil, err
	}
	_, percent, err := detection.Score(norm.Before, norm.After, opts)
	if err != nil {
		return nil, err
	}

	level := detection.Classify(percent)
	return &imageSimilarityResult{
		SimilarityPercent: detection.RoundPercent(percent),
		ChangeLevel:       level,
		ChangeDescription: level.Description(),
		Width:             norm.Width,
		Height:            norm.Height,
		Resized:           norm.Resized,
	}, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", detection.ErrInvalidImage)
	}
	info, err := imaging.LoadImageInfo(s.cache, a.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrInvalidImage, err)
	}
	return info, nil
}
