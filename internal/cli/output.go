package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/crimeguessr/internal/api/response"
	"github.com/mcoot/crimeguessr/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printHealth(v)
	case response.RoomList:
		o.printRoomList(v)
	case response.Room:
		o.printRoom(v)
	case response.GameList:
		o.printGameList(v)
	case response.LocationStats:
		o.printLocationStats(v)
	case response.ImportResult:
		fmt.Fprintf(o.w, "Imported %d locations (%d rows skipped)\n", v.Loaded, v.Skipped)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printHealth(h response.Health) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Locations: %d\n", h.LocationCount)
	if !h.DataSourceAvailable {
		fmt.Fprintln(o.w, "Crime data not loaded; rooms cannot be created")
	}
	fmt.Fprintf(o.w, "Active rooms: %d\n", h.ActiveRooms)
}

func (o *Output) printRoomList(l response.RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No live rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "%s  %-9s  round %d/%d  %d/%d players\n",
			r.Code, r.Status, r.CurrentRound, r.TotalRounds, r.PlayerCount, model.MaxPlayers)
	}
}

func (o *Output) printRoom(r response.Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.Code)
	fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	fmt.Fprintf(o.w, "Round: %d/%d\n", r.CurrentRound, r.TotalRounds)
	fmt.Fprintf(o.w, "Players (%d):\n", len(r.Players))
	o.printPlayers(r.Players)
}

func (o *Output) printPlayers(players []model.PlayerView) {
	for _, p := range players {
		hostStr := ""
		if p.IsHost {
			hostStr = " [host]"
		}
		fmt.Fprintf(o.w, "  - %s: %d points%s\n", p.Name, p.Score, hostStr)
	}
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No completed games")
		return
	}
	for _, g := range l.Games {
		scores := make([]string, len(g.FinalScores))
		for i, s := range g.FinalScores {
			scores[i] = fmt.Sprintf("%s %d", s.PlayerName, s.Score)
		}
		fmt.Fprintf(o.w, "%s  room %s  winner %s  (%s)\n",
			g.CompletedAt.Format("2006-01-02 15:04:05"), g.RoomCode, g.Winner, strings.Join(scores, ", "))
	}
}

func (o *Output) printLocationStats(s response.LocationStats) {
	fmt.Fprintf(o.w, "Locations: %d\n", s.Count)
	if !s.Available {
		fmt.Fprintln(o.w, "Crime data not loaded")
	}
}

// PrintEvent renders one server event received during play
func (o *Output) PrintEvent(event model.EventType, data json.RawMessage) {
	if o.format == "json" {
		line, _ := json.Marshal(struct {
			Event model.EventType `json:"event"`
			Data  json.RawMessage `json:"data,omitempty"`
		}{event, data})
		fmt.Fprintln(o.w, string(line))
		return
	}

	switch event {
	case model.EventConnected:
		fmt.Fprintln(o.w, "Connected")
	case model.EventRoomCreated:
		var p model.SeatPayload
		if decodeEvent(data, &p) {
			fmt.Fprintf(o.w, "Room %s created. Share the code with the other player.\n", p.RoomCode)
		}
	case model.EventRoomJoined:
		var p model.SeatPayload
		if decodeEvent(data, &p) {
			fmt.Fprintf(o.w, "Joined room %s\n", p.RoomCode)
		}
	case model.EventPlayerJoined:
		var p model.PlayersPayload
		if decodeEvent(data, &p) {
			fmt.Fprintln(o.w, "Players:")
			o.printPlayers(p.Players)
		}
	case model.EventReadyToStart:
		fmt.Fprintln(o.w, "Both players are here. Type 'start' to begin.")
	case model.EventRoundStart:
		var p model.RoundStartPayload
		if decodeEvent(data, &p) {
			o.printRoundStart(p)
		}
	case model.EventRoundEnd:
		var p model.RoundEndPayload
		if decodeEvent(data, &p) {
			o.printRoundEnd(p)
		}
	case model.EventGameEnd:
		var p model.GameEndPayload
		if decodeEvent(data, &p) {
			fmt.Fprintf(o.w, "Game over. Winner: %s\n", p.Winner)
			for i, s := range p.FinalScores {
				fmt.Fprintf(o.w, "  %d. %s: %d points\n", i+1, s.PlayerName, s.Score)
			}
		}
	case model.EventRoomClosed:
		var p model.RoomClosedPayload
		if decodeEvent(data, &p) {
			fmt.Fprintln(o.w, p.Message)
		}
	case model.EventPlayerLeft:
		var p model.PlayerLeftPayload
		if decodeEvent(data, &p) {
			fmt.Fprintln(o.w, p.Message)
		}
	case model.EventError:
		var p model.ErrorPayload
		if decodeEvent(data, &p) {
			fmt.Fprintf(o.w, "Error: %s (%s)\n", p.Message, p.Code)
		}
	default:
		fmt.Fprintf(o.w, "%s: %s\n", event, string(data))
	}
}

func (o *Output) printRoundStart(p model.RoundStartPayload) {
	fmt.Fprintf(o.w, "Round %d/%d\n", p.Round, p.TotalRounds)
	if p.Location.Offense != "" {
		fmt.Fprintf(o.w, "Crime: %s (%s)\n", p.Location.Offense, p.Location.Category)
	}
	if p.Location.StreetViewURL != "" {
		fmt.Fprintf(o.w, "Street view: %s\n", p.Location.StreetViewURL)
	}
	fmt.Fprintf(o.w, "You have %ds. Type 'guess <lat> <lon>'.\n", p.TimeLimit)
}

func (o *Output) printRoundEnd(p model.RoundEndPayload) {
	loc := p.ActualLocation
	where := fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
	if loc.Borough != "" {
		where += " (" + loc.Borough + ")"
	}
	fmt.Fprintf(o.w, "Round %d answer: %s\n", p.CurrentRound, where)
	for _, r := range p.Results {
		fmt.Fprintf(o.w, "  %s: %.2f km, +%d (total %d)\n", r.PlayerName, r.DistanceKM, r.RoundScore, r.TotalScore)
	}
	fmt.Fprintln(o.w, "Type 'next' to continue.")
}

func decodeEvent(data json.RawMessage, v any) bool {
	return json.Unmarshal(data, v) == nil
}
