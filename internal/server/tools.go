package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties describes the before/after inputs shared by the
// comparison tools. Each image is given either as a path or as base64 data.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"before_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the earlier image. Mutually exclusive with before_base64.",
		},
		"before_base64": map[string]interface{}{
			"type":        "string",
			"description": "Earlier image as base64 (a data: URL prefix is accepted). Mutually exclusive with before_path.",
		},
		"after_path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the later image. Mutually exclusive with after_base64.",
		},
		"after_base64": map[string]interface{}{
			"type":        "string",
			"description": "Later image as base64 (a data: URL prefix is accepted). Mutually exclusive with after_path.",
		},
		"window_size": map[string]interface{}{
			"type":        "integer",
			"description": "Side of the square similarity window, odd, 3 to 15. Default 7",
			"minimum":     3,
			"maximum":     15,
		},
		"blur_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian pre-blur applied to both images to suppress sensor noise. Default 0 (off)",
			"minimum":     0,
		},
	}
}

func compareProperties() map[string]interface{} {
	props := imageSourceProperties()

	props["threshold"] = map[string]interface{}{
		"type":        "number",
		"description": "Dissimilarity above which a pixel counts as changed (0 to 1). Default 0.3",
		"minimum":     0,
		"maximum":     1,
	}
	props["top_n"] = map[string]interface{}{
		"type":        "integer",
		"description": "Maximum number of changed regions listed, largest first. Default 10",
		"minimum":     1,
	}
	props["min_area"] = map[string]interface{}{
		"type":        "integer",
		"description": "Changed regions smaller than this many pixels are ignored. Default 100",
		"minimum":     1,
	}
	props["annotate"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Draw numbered boxes around the listed regions on the diff image",
	}
	props["read_text"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Run OCR inside each listed region of the later image",
	}
	props["language"] = map[string]interface{}{
		"type":        "string",
		"description": "OCR language code(s), e.g. 'eng' or 'eng+deu'. Used with read_text",
	}
	props["before_date"] = map[string]interface{}{
		"type":        "string",
		"description": "Capture date of the earlier image (YYYY-MM-DD)",
	}
	props["after_date"] = map[string]interface{}{
		"type":        "string",
		"description": "Capture date of the later image (YYYY-MM-DD)",
	}
	props["location"] = map[string]interface{}{
		"type":        "string",
		"description": "Free-text description of the scene's location",
	}

	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_compare",
			Description: "Compare two images of the same scene taken at different times. Returns a structural similarity percentage, a change level (critical/high/medium/low), the changed regions ranked by area, a heatmap diff image (base64) and a text summary.",
			InputSchema: map[string]interface{}{
				"type":                 "object",
				"properties":           compareProperties(),
				"additionalProperties": false,
			},
		},
		{
			Name:        "image_similarity",
			Description: "Score how structurally similar two images are without rendering a diff or extracting regions. Returns the similarity percentage, change level and compared dimensions.",
			InputSchema: map[string]interface{}{
				"type":                 "object",
				"properties":           imageSourceProperties(),
				"additionalProperties": false,
			},
		},
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. Loaded images are cached for later comparisons by path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
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
