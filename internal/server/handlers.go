package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/sightline/internal/announce"
	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/fusion"
	"github.com/ironsheep/sightline/internal/geometry"
	"github.com/ironsheep/sightline/internal/imaging"
	"github.com/ironsheep/sightline/internal/location"
	"github.com/ironsheep/sightline/internal/ocr"
)

// defaultTextConfidence is the word confidence floor for text_read.
const defaultTextConfidence = 0.5

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "frame_activity", "detections_fuse").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warnw("Tool failed", "tool", params.Name, "err", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Frame Analysis
	case "frame_activity":
		return s.handleFrameActivity(args)
	case "frame_far_check":
		return s.handleFrameFarCheck(args)
	case "frame_annotate":
		return s.handleFrameAnnotate(args)

	// Detection
	case "detections_fuse":
		return s.handleDetectionsFuse(ctx, args)
	case "distance_estimate":
		return s.handleDistanceEstimate(args)

	// Scene Understanding
	case "location_infer":
		return s.handleLocationInfer(args)
	case "text_read":
		return s.handleTextRead(ctx, args)

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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Frame Analysis Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameActivity(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.AnalyzeActivity(f), nil
}

type frameFarCheckArgs struct {
	Path   string `json:"path"`
	Zone   string `json:"zone"`
	Preset string `json:"preset"`
}

type frameFarCheckResult struct {
	Preset imaging.DistanceConfig `json:"preset"`
	Zones  []imaging.FarAnalysis  `json:"zones"`
}

func (s *Server) handleFrameFarCheck(args json.RawMessage) (interface{}, error) {
	var a frameFarCheckArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	preset := a.Preset
	if preset == "" {
		preset = s.cfg.DistancePreset
	}
	cfg, err := imaging.PresetByName(preset)
	if err != nil {
		return nil, err
	}

	zones := geometry.AllZones
	if a.Zone != "" {
		z, err := geometry.ParseZone(a.Zone)
		if err != nil {
			return nil, err
		}
		zones = []geometry.Zone{z}
	}

	f, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	result := frameFarCheckResult{Preset: cfg}
	for _, z := range zones {
		result.Zones = append(result.Zones, imaging.AnalyzeFar(f, z, cfg))
	}
	return result, nil
}

type annotateBoxArgs struct {
	Label string        `json:"label"`
	Box   geometry.Rect `json:"box"`
}

type frameAnnotateArgs struct {
	Path  string            `json:"path"`
	Boxes []annotateBoxArgs `json:"boxes"`
}

func (s *Server) handleFrameAnnotate(args json.RawMessage) (interface{}, error) {
	var a frameAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Image(a.Path)
	if err != nil {
		return nil, err
	}

	boxes := make([]imaging.AnnotatedBox, len(a.Boxes))
	for i, b := range a.Boxes {
		boxes[i] = imaging.AnnotatedBox{Label: b.Label, Box: b.Box}
	}
	return imaging.Annotate(img, boxes, s.cfg.Zones)
}

// === Detection Handlers ===

type channelArgs struct {
	Kind       fusion.Kind     `json:"kind"`
	Detections []detection.Raw `json:"detections"`
	Error      string          `json:"error"`
}

type detectionsFuseArgs struct {
	Path      string        `json:"path"`
	Channels  []channelArgs `json:"channels"`
	ReturnAll bool          `json:"return_all"`
}

type detectionsFuseResult struct {
	fusion.Result
	Phrase string `json:"phrase"`
}

func (s *Server) handleDetectionsFuse(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a detectionsFuseArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	channels := make([]fusion.Channel, len(a.Channels))
	for i, c := range a.Channels {
		if c.Error != "" {
			failure := errors.New(c.Error)
			channels[i] = fusion.NewChannel(c.Kind, func(context.Context, *imaging.Frame) ([]detection.Raw, error) {
				return nil, failure
			})
			continue
		}
		channels[i] = fusion.Recorded(c.Kind, c.Detections)
	}

	opts, err := s.cfg.FusionOptions()
	if err != nil {
		return nil, err
	}
	engine, err := fusion.NewEngine(opts, s.logger.Named("fusion"), channels...)
	if err != nil {
		return nil, err
	}

	// Without an image, label-only detections resolve to center.
	var f *imaging.Frame
	if a.Path != "" {
		if f, err = s.cache.Load(a.Path); err != nil {
			return nil, err
		}
	}

	res, err := engine.FuseResult(ctx, f, a.ReturnAll)
	if err != nil {
		return nil, err
	}
	return detectionsFuseResult{Result: res, Phrase: announce.Phrases(res.Detections)}, nil
}

type distanceEstimateArgs struct {
	Box  *geometry.Rect `json:"box"`
	Area float64        `json:"area"`
}

type distanceEstimateResult struct {
	Area     float64                    `json:"area"`
	Known    bool                       `json:"known"`
	Meters   float64                    `json:"meters,omitempty"`
	Category detection.DistanceCategory `json:"category,omitempty"`
	Position *geometry.Zone             `json:"position,omitempty"`
}

func (s *Server) handleDistanceEstimate(args json.RawMessage) (interface{}, error) {
	var a distanceEstimateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	result := distanceEstimateResult{Area: a.Area}
	if a.Box != nil {
		box := a.Box.Clamp()
		zone := s.cfg.Zones.ZoneOf(box)
		result.Area = box.Area()
		result.Position = &zone
	}

	if est, ok := detection.EstimateDistance(result.Area); ok {
		result.Known = true
		result.Meters = est.Meters
		result.Category = est.Category
	}
	return result, nil
}

// === Scene Understanding Handlers ===

type locationInferArgs struct {
	Labels []string `json:"labels"`
}

type locationInferResult struct {
	Location string           `json:"location"`
	Scores   []location.Score `json:"scores"`
}

func (s *Server) handleLocationInfer(args json.RawMessage) (interface{}, error) {
	var a locationInferArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return locationInferResult{
		Location: location.Infer(a.Labels),
		Scores:   location.Scores(a.Labels),
	}, nil
}

type textReadArgs struct {
	Path          string         `json:"path"`
	Region        *geometry.Rect `json:"region"`
	MinConfidence *float64       `json:"min_confidence"`
}

type textReadResult struct {
	Words    []ocr.Observation `json:"words"`
	Sentence string            `json:"sentence"`
}

func (s *Server) handleTextRead(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a textReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	minConfidence := defaultTextConfidence
	if a.MinConfidence != nil {
		minConfidence = *a.MinConfidence
	}

	img, err := s.cache.Image(a.Path)
	if err != nil {
		return nil, err
	}

	var obs []ocr.Observation
	if a.Region != nil {
		obs, err = s.reader.RecognizeRegion(ctx, img, *a.Region)
	} else {
		obs, err = s.reader.Recognize(ctx, img)
	}
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return textReadResult{
		Words:    ocr.ReadingOrder(obs),
		Sentence: ocr.Sentence(obs, minConfidence),
	}, nil
}
