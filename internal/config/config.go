package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/derekprior/matchweek/internal/matchup"
)

// MatrixSuffix is appended to a flight name to name its matchup matrix sheet.
const MatrixSuffix = " Matrix"

// maxSheetName is Excel's limit on worksheet names.
const maxSheetName = 31

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

type BlackoutDate struct {
	Date   Date   `yaml:"date"`
	Reason string `yaml:"reason"`
}

type Season struct {
	Name          string         `yaml:"name"`
	StartDate     Date           `yaml:"start_date"`
	FirstWeek     int            `yaml:"first_week"`
	Weeks         int            `yaml:"weeks"`
	BlackoutDates []BlackoutDate `yaml:"blackout_dates"`
}

type Search struct {
	MaxRestarts         int `yaml:"max_restarts"`
	MaxAttemptsPerRound int `yaml:"max_attempts_per_round"`
}

type Player struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Matchup is a two-player sequence in YAML: ["Ann", "Bob"]. Either side
// may be a player id or a player name.
type Matchup struct {
	A string
	B string
}

func (m *Matchup) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: matchup must be a list of two players", value.Line)
	}
	m.A = value.Content[0].Value
	m.B = value.Content[1].Value
	return nil
}

type FixedWeek struct {
	Week     int       `yaml:"week"`
	Matchups []Matchup `yaml:"matchups"`
}

type Flight struct {
	Name       string      `yaml:"name"`
	Weeks      int         `yaml:"weeks"`
	Players    []Player    `yaml:"players"`
	FixedWeeks []FixedWeek `yaml:"fixed_weeks"`
}

type Config struct {
	Season    Season   `yaml:"season"`
	Seed      int64    `yaml:"seed"`
	AllowByes bool     `yaml:"allow_byes"`
	Partial   bool     `yaml:"partial"`
	Search    Search   `yaml:"search"`
	Flights   []Flight `yaml:"flights"`
}

// Roster returns the flight's players. A player without an id is
// identified by name.
func (f *Flight) Roster() []matchup.Player {
	roster := make([]matchup.Player, len(f.Players))
	for i, p := range f.Players {
		id := p.ID
		if id == "" {
			id = p.Name
		}
		roster[i] = matchup.Player{ID: matchup.PlayerID(id), Name: p.Name}
	}
	return roster
}

// Resolve looks a player up by id first, then by name.
func (f *Flight) Resolve(ref string) (matchup.PlayerID, bool) {
	roster := f.Roster()
	for _, p := range roster {
		if string(p.ID) == ref {
			return p.ID, true
		}
	}
	for _, p := range roster {
		if p.Name == ref {
			return p.ID, true
		}
	}
	return "", false
}

// Fixed converts the flight's fixed weeks into pairings.
func (f *Flight) Fixed() ([]matchup.FixedRound, error) {
	var fixed []matchup.FixedRound
	for _, fw := range f.FixedWeeks {
		fr := matchup.FixedRound{Week: fw.Week}
		for _, m := range fw.Matchups {
			a, ok := f.Resolve(m.A)
			if !ok {
				return nil, fmt.Errorf("flight %q week %d: unknown player %q", f.Name, fw.Week, m.A)
			}
			b, ok := f.Resolve(m.B)
			if !ok {
				return nil, fmt.Errorf("flight %q week %d: unknown player %q", f.Name, fw.Week, m.B)
			}
			fr.Pairings = append(fr.Pairings, matchup.Pairing{A: a, B: b})
		}
		fixed = append(fixed, fr)
	}
	return fixed, nil
}

// FirstWeek returns the number of the season's first week.
func (c *Config) FirstWeek() int {
	if c.Season.FirstWeek == 0 {
		return 1
	}
	return c.Season.FirstWeek
}

// WeeksFor returns how many weeks to schedule for a flight: the flight's own
// setting, else the season's, else a complete round robin.
func (c *Config) WeeksFor(f *Flight) int {
	if f.Weeks > 0 {
		return f.Weeks
	}
	if c.Season.Weeks > 0 {
		return c.Season.Weeks
	}
	n := len(f.Players)
	if n%2 == 1 {
		return n
	}
	return n - 1
}

// MaxWeeks returns the longest flight schedule.
func (c *Config) MaxWeeks() int {
	max := 0
	for i := range c.Flights {
		if w := c.WeeksFor(&c.Flights[i]); w > max {
			max = w
		}
	}
	return max
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if c.Season.StartDate.Time.IsZero() {
		return fmt.Errorf("season start_date is required")
	}
	if c.Season.Weeks < 0 {
		return fmt.Errorf("season weeks must not be negative")
	}
	if c.Search.MaxRestarts < 0 || c.Search.MaxAttemptsPerRound < 0 {
		return fmt.Errorf("search bounds must not be negative")
	}

	if len(c.Flights) == 0 {
		return fmt.Errorf("at least one flight is required")
	}

	flights := make(map[string]bool)
	sheets := make(map[string]string) // lower-cased sheet name -> flight
	for i := range c.Flights {
		f := &c.Flights[i]
		if f.Name == "" {
			return fmt.Errorf("flight %d has no name", i+1)
		}
		if flights[f.Name] {
			return fmt.Errorf("flight %q is defined more than once", f.Name)
		}
		flights[f.Name] = true
		if err := checkSheetNames(f.Name, sheets); err != nil {
			return err
		}

		if len(f.Players) < 2 {
			return fmt.Errorf("flight %q needs at least 2 players", f.Name)
		}
		if len(f.Players)%2 == 1 && !c.AllowByes {
			return fmt.Errorf("flight %q has %d players; set allow_byes to schedule an odd flight", f.Name, len(f.Players))
		}

		// Check for duplicate ids and names
		ids := make(map[matchup.PlayerID]bool)
		names := make(map[string]bool)
		for _, p := range f.Roster() {
			if p.Name == "" {
				return fmt.Errorf("flight %q: player %q has no name", f.Name, p.ID)
			}
			if ids[p.ID] {
				return fmt.Errorf("flight %q: player id %q appears more than once", f.Name, p.ID)
			}
			// Schedule cells are written as "A vs B".
			if strings.Contains(p.Name, " vs ") {
				return fmt.Errorf("flight %q: player name %q must not contain \" vs \"", f.Name, p.Name)
			}
			if names[p.Name] {
				return fmt.Errorf("flight %q: player name %q appears more than once", f.Name, p.Name)
			}
			ids[p.ID] = true
			names[p.Name] = true
		}

		if _, err := f.Fixed(); err != nil {
			return err
		}
	}

	return nil
}

// checkSheetNames applies Excel's worksheet name rules to a flight's schedule
// and matrix sheets. Excel compares sheet names case-insensitively.
func checkSheetNames(flight string, sheets map[string]string) error {
	if strings.ContainsAny(flight, `:\/?*[]`) {
		return fmt.Errorf("flight %q: name must not contain any of : \\ / ? * [ ]", flight)
	}
	if n := utf8.RuneCountInString(flight + MatrixSuffix); n > maxSheetName {
		return fmt.Errorf("flight %q: name is too long for a worksheet; keep it to %d characters", flight, maxSheetName-len(MatrixSuffix))
	}
	for _, sheet := range []string{flight, flight + MatrixSuffix} {
		key := strings.ToLower(sheet)
		if other, ok := sheets[key]; ok {
			return fmt.Errorf("flight %q: worksheet %q clashes with flight %q", flight, sheet, other)
		}
		sheets[key] = flight
	}
	return nil
}
