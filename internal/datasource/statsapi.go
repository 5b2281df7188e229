package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const dataSourceDisabledMsg = "data source is disabled"

// StatsAPIClient implements DataSource for the league stats API
type StatsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	league     string
	enabled    bool
	logger     *logrus.Logger
}

// statsAPIGame represents a game as returned by the stats API
type statsAPIGame struct {
	ID        string             `json:"gamePk"`
	League    string             `json:"league"`
	Date      string             `json:"officialDate"`
	HomeTeam  string             `json:"homeTeam"`
	AwayTeam  string             `json:"awayTeam"`
	HomeScore int                `json:"homeScore"`
	AwayScore int                `json:"awayScore"`
	Venue     *string            `json:"venue"`
	Innings   int                `json:"scheduledInnings"`
	Status    string             `json:"status"`
	Batting   []statsAPIBatting  `json:"battingLines"`
	Pitching  []statsAPIPitching `json:"pitchingLines"`
}

// statsAPIBatting represents a batting line entry from the stats API
type statsAPIBatting struct {
	Team       string  `json:"team"`
	PlayerID   string  `json:"personId"`
	PlayerName string  `json:"fullName"`
	AtBats     int     `json:"atBats"`
	Runs       int     `json:"runs"`
	Hits       int     `json:"hits"`
	Doubles    int     `json:"doubles"`
	Triples    int     `json:"triples"`
	HomeRuns   int     `json:"homeRuns"`
	RBI        int     `json:"rbi"`
	Walks      int     `json:"baseOnBalls"`
	Strikeouts int     `json:"strikeOuts"`
	Average    *string `json:"avg"`
}

// statsAPIPitching represents a pitching line entry from the stats API
type statsAPIPitching struct {
	Team            string  `json:"team"`
	PlayerID        string  `json:"personId"`
	PlayerName      string  `json:"fullName"`
	Outs            int     `json:"outs"`
	HitsAllowed     int     `json:"hits"`
	RunsAllowed     int     `json:"runs"`
	EarnedRuns      int     `json:"earnedRuns"`
	HomeRunsAllowed int     `json:"homeRuns"`
	Walks           int     `json:"baseOnBalls"`
	Strikeouts      int     `json:"strikeOuts"`
	ERA             *string `json:"era"`
}

// NewStatsAPIClient creates a new stats API client
func NewStatsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, league string, enabled bool, logger *logrus.Logger) *StatsAPIClient {
	if baseURL == "" {
		baseURL = "https://statsapi.example.com/v1"
	}
	return &StatsAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		league:     league,
		enabled:    enabled,
		logger:     logger,
	}
}

// FetchMonth retrieves every finished game of the given calendar month
func (c *StatsAPIClient) FetchMonth(ctx context.Context, year int, month time.Month) (*MonthData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	url := fmt.Sprintf("%s/games?league=%s&from=%s&to=%s&status=final",
		c.baseURL, c.league, first.Format("2006-01-02"), last.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to fetch month", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(c.Name(), resp); err != nil {
		return nil, err
	}

	var apiGames []statsAPIGame
	if err := json.NewDecoder(resp.Body).Decode(&apiGames); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	data := &MonthData{
		Year:      year,
		Month:     month,
		Games:     make([]GameData, 0, len(apiGames)),
		FetchedAt: time.Now().UTC(),
	}
	for i := range apiGames {
		game, err := c.convertGame(&apiGames[i])
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"game_id": apiGames[i].ID,
				"error":   err,
			}).Warn("Skipping unparseable game")
			continue
		}
		data.Games = append(data.Games, *game)
	}

	return data, nil
}

// FetchGame retrieves a single game's box score
func (c *StatsAPIClient) FetchGame(ctx context.Context, gameID string) (*GameData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/games/%s", c.baseURL, gameID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to fetch game", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, NewDataSourceError(c.Name(), ErrCodeNotFound, "game not found", nil)
	}
	if err := checkStatus(c.Name(), resp); err != nil {
		return nil, err
	}

	var apiGame statsAPIGame
	if err := json.NewDecoder(resp.Body).Decode(&apiGame); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to parse response", err)
	}

	return c.convertGame(&apiGame)
}

// Name returns the data source name
func (c *StatsAPIClient) Name() string {
	return "stats_api"
}

// IsEnabled returns whether this data source is enabled
func (c *StatsAPIClient) IsEnabled() bool {
	return c.enabled
}

func (c *StatsAPIClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")
}

// convertGame converts the stats API game format to GameData
func (c *StatsAPIClient) convertGame(g *statsAPIGame) (*GameData, error) {
	if g.Status != "" && g.Status != "final" {
		return nil, fmt.Errorf("game %s is not final (status %q)", g.ID, g.Status)
	}

	date, err := time.Parse("2006-01-02", g.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid game date %q: %w", g.Date, err)
	}

	league := g.League
	if league == "" {
		league = c.league
	}
	innings := g.Innings
	if innings == 0 {
		innings = 9
	}

	game := &GameData{
		SourceID:  g.ID,
		League:    league,
		Date:      date,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Venue:     g.Venue,
		Innings:   innings,
		Batting:   make([]BattingData, len(g.Batting)),
		Pitching:  make([]PitchingData, len(g.Pitching)),
	}

	for i, b := range g.Batting {
		game.Batting[i] = BattingData{
			Team:       b.Team,
			PlayerID:   b.PlayerID,
			PlayerName: b.PlayerName,
			AtBats:     b.AtBats,
			Runs:       b.Runs,
			Hits:       b.Hits,
			Doubles:    b.Doubles,
			Triples:    b.Triples,
			HomeRuns:   b.HomeRuns,
			RBI:        b.RBI,
			Walks:      b.Walks,
			Strikeouts: b.Strikeouts,
			Average:    b.Average,
		}
	}
	for i, p := range g.Pitching {
		game.Pitching[i] = PitchingData{
			Team:            p.Team,
			PlayerID:        p.PlayerID,
			PlayerName:      p.PlayerName,
			OutsRecorded:    p.Outs,
			HitsAllowed:     p.HitsAllowed,
			RunsAllowed:     p.RunsAllowed,
			EarnedRuns:      p.EarnedRuns,
			HomeRunsAllowed: p.HomeRunsAllowed,
			Walks:           p.Walks,
			Strikeouts:      p.Strikeouts,
			ERA:             p.ERA,
		}
	}

	return game, nil
}

// checkStatus maps non-2xx responses to DataSourceError
func checkStatus(source string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewDataSourceError(source, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return NewDataSourceError(source, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
	return nil
}
