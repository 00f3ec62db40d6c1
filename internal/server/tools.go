package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func rectProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "number", "description": "Left edge (0-1)"},
			"y":      map[string]interface{}{"type": "number", "description": "Top edge (0-1)"},
			"width":  map[string]interface{}{"type": "number", "description": "Width (0-1)"},
			"height": map[string]interface{}{"type": "number", "description": "Height (0-1)"},
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame Analysis
		{
			Name:        "frame_activity",
			Description: "Score pixel activity in the left, center and right thirds of an image and resolve where its subject sits. This is the fallback used for detections that carry only a label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_far_check",
			Description: "Decide whether the dominant object in a zone is too far away to be worth announcing, using a named threshold preset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"zone": map[string]interface{}{
						"type":        "string",
						"description": "Zone to check. Omit to check all three.",
						"enum":        []string{"left", "center", "right"},
					},
					"preset": map[string]interface{}{
						"type":        "string",
						"description": "Distance preset. Defaults to the configured preset.",
						"enum":        []string{"lenient", "default", "aggressive", "veryClose", "ultraClose"},
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_annotate",
			Description: "Draw zone boundaries and labeled boxes on an image, colored by the zone each box falls in. Returns base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"boxes": map[string]interface{}{
						"type":        "array",
						"description": "Boxes to draw",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"label": map[string]interface{}{"type": "string"},
								"box":   rectProperty("Normalized bounding box"),
							},
							"required": []string{"box"},
						},
					},
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "detections_fuse",
			Description: "Fuse recorded detector channel output into the detection set that would be announced. Channels are ranked by priority; the first channel with usable output wins.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Optional image the detections came from. Used to position label-only detections.",
					},
					"channels": map[string]interface{}{
						"type":        "array",
						"description": "Raw output of each detector channel",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"kind": map[string]interface{}{
									"type": "string",
									"enum": []string{"object", "animal", "face", "classification"},
								},
								"detections": map[string]interface{}{
									"type": "array",
									"items": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"label":      map[string]interface{}{"type": "string"},
											"confidence": map[string]interface{}{"type": "number"},
											"box":        rectProperty("Optional normalized bounding box"),
										},
										"required": []string{"label", "confidence"},
									},
								},
								"error": map[string]interface{}{
									"type":        "string",
									"description": "Simulate a channel failure with this message",
								},
							},
							"required": []string{"kind"},
						},
					},
					"return_all": map[string]interface{}{
						"type":        "boolean",
						"description": "Return every detection of the winning channel instead of only the most confident",
						"default":     false,
					},
				},
				"required": []string{"channels"},
			},
		},
		{
			Name:        "distance_estimate",
			Description: "Estimate the distance to an object from the share of the frame its bounding box covers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"box": rectProperty("Normalized bounding box"),
					"area": map[string]interface{}{
						"type":        "number",
						"description": "Box area as a fraction of the frame (0-1). Ignored when box is given.",
					},
				},
			},
		},

		// Scene Understanding
		{
			Name:        "location_infer",
			Description: "Infer the kind of place (kitchen, bedroom, street...) from a set of detected object labels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"labels": map[string]interface{}{
						"type":        "array",
						"description": "Detected object labels",
						"items":       map[string]interface{}{"type": "string"},
					},
				},
				"required": []string{"labels"},
			},
		},
		{
			Name:        "text_read",
			Description: "Read text in an image with OCR. Words are returned left to right, and implausible tokens are dropped from the sentence.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": rectProperty("Optional normalized region to read"),
					"min_confidence": map[string]interface{}{
						"type":        "number",
						"description": "Minimum word confidence (0-1) for the sentence. Default 0.5",
						"default":     0.5,
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
