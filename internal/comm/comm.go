package comm

import (
	"encoding/json"

	"github.com/strmparty/loto-services/internal/lotosvc/models"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "draw-number", "loto-snapshot"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// operator commands (socket -> loto service)

type DrawRequest struct {
	Number string `json:"number,omitempty"` // set for manual entry mode
}

type RevealRequest struct {
	Cell int `json:"cell"` // 0-based board index
}

type DeleteTicketRequest struct {
	TicketID string `json:"ticket_id"`
}

type NewGameRequest struct {
	Settings *models.Settings `json:"settings,omitempty"`
}

type ThresholdRequest struct {
	WinThreshold int `json:"win_threshold"`
}

// events (loto service -> socket)

type DrawData struct {
	Number   string   `json:"number"`
	Drawn    []string `json:"drawn"` // full history, draw order
	PoolLeft int      `json:"pool_left"`
}

type WinnerData struct {
	Winner models.TicketScore `json:"winner"`
	Drawn  []string           `json:"drawn"`
}

type WinnerLogData struct {
	Winners []models.WinnerRecord `json:"winners"`
}

type Res struct {
	Status bool   `json:"status"`
	Error  string `json:"error,omitempty"`
}
