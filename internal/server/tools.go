package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var (
	pathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the scorecard photo",
	}
	playerProperty = map[string]interface{}{
		"type":        "string",
		"description": "Player name as written on the card (case and accents are ignored)",
	}
	presetProperty = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"default", "lenient"},
		"description": "Threshold preset. 'lenient' widens tolerances for photos taken at an angle. Defaults to the server configuration",
	}
	observationsProperty = map[string]interface{}{
		"description": "Detector output: an array of {text, x, y, width, height, confidence?} with fractional coordinates and the origin at the bottom-left, or an object {player?, observations: [...]}",
		"oneOf": []interface{}{
			map[string]interface{}{"type": "array"},
			map[string]interface{}{"type": "object"},
		},
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "scorecard_read",
			Description: "Read one player's 18 hole scores from a photo of a golf scorecard. Runs text detection, then tries grid, column, cluster and row strategies in that order. Returns the scores (null for unreadable holes), per-hole confidence, the strategy used, the final state, whether manual entry is needed, and a decision trace.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"player": playerProperty,
					"preset": presetProperty,
				},
				"required": []string{"path", "player"},
			},
		},
		{
			Name:        "scorecard_extract",
			Description: "Reconstruct a player's scores from text observations that were already detected (for example the output of scorecard_detect, or a mobile device's own text recognizer). Same result shape as scorecard_read.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"observations": observationsProperty,
					"player": map[string]interface{}{
						"type":        "string",
						"description": "Player name. Optional when the observations object names one",
					},
					"preset": presetProperty,
				},
				"required": []string{"observations"},
			},
		},
		{
			Name:        "scorecard_detect",
			Description: "Run text detection on a scorecard photo and return the raw observations with fractional, bottom-left-origin boxes. Useful for debugging a read or for feeding scorecard_extract.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scorecard_overlay",
			Description: "Draw the detected text boxes on the photo, coloured by role (player name, player row, hole header, other numbers, other text), with dashed guides at each hole column. Returns a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"player": playerProperty,
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw each observation's text above its box. Default false",
						"default":     false,
					},
					"column_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex colour for hole column guides (e.g. '#FF00FF')",
					},
					"preset": presetProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scorecard_export_xlsx",
			Description: "Read a player's scores from a photo or from observations and write them to an Excel workbook: hole, score and confidence rows plus report details, and the decision trace on a second sheet. Unconfident scores are highlighted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty,
					"observations": observationsProperty,
					"player":       playerProperty,
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the .xlsx file. Defaults to the photo path with .xlsx appended; required for observations",
					},
					"preset": presetProperty,
				},
				"required": []string{"player"},
			},
		},
	}
}

// handleToolsList returns the tool catalogue
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
