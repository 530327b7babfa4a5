package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/riskibarqy/cricket-fantasy/internal/domain/match"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/player"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/provider"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/syncstate"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/team"
	"github.com/riskibarqy/cricket-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/id"
	"github.com/riskibarqy/cricket-fantasy/internal/platform/logging"
)

const (
	// tournamentListID is the entity id of the single tournament list record.
	tournamentListID = "all"

	maxTeamNameDistance  = 2
	minFuzzyTeamNameSize = 5
	minFuzzyTeamWordSize = 4
)

// Repositories groups the persistent store used by the cache layer.
type Repositories struct {
	Tournaments tournament.Repository
	Matches     match.Repository
	Teams       team.Repository
	Players     player.Repository
	PlayerStats playerstats.Repository
	SyncRecords syncstate.Repository
}

func (r Repositories) validate() error {
	switch {
	case r.Tournaments == nil:
		return fmt.Errorf("%w: tournament repository", ErrDependencyUnavailable)
	case r.Matches == nil:
		return fmt.Errorf("%w: match repository", ErrDependencyUnavailable)
	case r.Teams == nil:
		return fmt.Errorf("%w: team repository", ErrDependencyUnavailable)
	case r.Players == nil:
		return fmt.Errorf("%w: player repository", ErrDependencyUnavailable)
	case r.PlayerStats == nil:
		return fmt.Errorf("%w: player stats repository", ErrDependencyUnavailable)
	case r.SyncRecords == nil:
		return fmt.Errorf("%w: sync record repository", ErrDependencyUnavailable)
	}
	return nil
}

// EntityWriter persists provider results by external id together with their
// sync record. Every write is an upsert.
type EntityWriter struct {
	repos  Repositories
	teamID id.Generator
	now    func() time.Time
	logger *logging.Logger
}

func NewEntityWriter(repos Repositories, teamIDs id.Generator, logger *logging.Logger) (*EntityWriter, error) {
	if err := repos.validate(); err != nil {
		return nil, err
	}
	if teamIDs == nil {
		teamIDs = id.NewRandomGenerator().WithPrefix("team_")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &EntityWriter{
		repos:  repos,
		teamID: teamIDs,
		now:    time.Now,
		logger: logger.Named("entity_writer"),
	}, nil
}

func (w *EntityWriter) WriteTournaments(ctx context.Context, items []tournament.Tournament) ([]tournament.Tournament, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WriteTournaments")
	defer span.End()

	syncedAt := w.now().UTC()
	out := make([]tournament.Tournament, 0, len(items))
	for _, item := range items {
		item.LastSyncedAt = syncedAt
		if err := item.Validate(); err != nil {
			w.logger.WarnContext(ctx, "skip invalid tournament", "tournament_id", item.ID, "error", err)
			continue
		}
		if err := w.repos.Tournaments.Upsert(ctx, item); err != nil {
			return nil, fmt.Errorf("upsert tournament id=%s: %w", item.ID, err)
		}
		if err := w.writeRecord(ctx, syncstate.KindTournament, item.ID, item, syncedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := w.writeRecord(ctx, syncstate.KindTournamentList, tournamentListID, out, syncedAt); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteMatchPayload unwraps a provider payload and writes it as kind.
func (w *EntityWriter) WriteMatchPayload(ctx context.Context, kind syncstate.Kind, payload match.Payload) (match.Match, error) {
	item, err := match.Unwrap(payload)
	if err != nil {
		return match.Match{}, fmt.Errorf("%w: %w", provider.ErrMalformedUpstreamData, err)
	}
	return w.WriteMatch(ctx, kind, item)
}

// WriteMatch resolves both teams, then upserts the match. A stored final
// match is never replaced by a payload that is not final.
func (w *EntityWriter) WriteMatch(ctx context.Context, kind syncstate.Kind, item match.Match) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WriteMatch")
	defer span.End()

	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", provider.ErrMalformedUpstreamData, err)
	}
	syncedAt := w.now().UTC()

	stored, exists, err := w.repos.Matches.GetByID(ctx, item.ID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match id=%s: %w", item.ID, err)
	}
	if exists && stored.Status.Final() && !item.Status.Final() {
		w.logger.WarnContext(ctx, "ignore regressing match payload",
			"match_id", item.ID,
			"stored_status", stored.Status,
			"incoming_status", item.Status,
		)
		stored.Live = nil
		if err := w.writeRecord(ctx, kind, stored.ID, stored, syncedAt); err != nil {
			return match.Match{}, err
		}
		return stored, nil
	}

	if item.TeamA, err = w.ensureTeamRef(ctx, item.TeamA); err != nil {
		return match.Match{}, err
	}
	if item.TeamB, err = w.ensureTeamRef(ctx, item.TeamB); err != nil {
		return match.Match{}, err
	}
	if item.TournamentID == "" && exists {
		item.TournamentID = stored.TournamentID
	}
	if !item.Status.InPlay() {
		item.Live = nil
	}
	item.LastSyncedAt = syncedAt
	if exists && stored.Status.Final() && item.Status.Final() {
		// A final match keeps the time it was first seen final.
		item.LastSyncedAt = stored.LastSyncedAt
	}

	if err := w.repos.Matches.Upsert(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("upsert match id=%s: %w", item.ID, err)
	}
	if err := w.writeRecord(ctx, kind, item.ID, item, syncedAt); err != nil {
		return match.Match{}, err
	}
	return item, nil
}

// WriteMatches writes a tournament's match list. Malformed entries are logged
// and skipped.
func (w *EntityWriter) WriteMatches(ctx context.Context, tournamentID string, payloads []match.Payload) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WriteMatches")
	defer span.End()

	out := make([]match.Match, 0, len(payloads))
	for _, payload := range payloads {
		item, err := match.Unwrap(payload)
		if err != nil {
			w.logger.WarnContext(ctx, "skip malformed match payload", "tournament_id", tournamentID, "error", err)
			continue
		}
		if item.TournamentID == "" {
			item.TournamentID = tournamentID
		}
		written, err := w.WriteMatch(ctx, syncstate.KindMatch, item)
		if err != nil {
			if isMalformed(err) {
				w.logger.WarnContext(ctx, "skip malformed match", "tournament_id", tournamentID, "match_id", item.ID, "error", err)
				continue
			}
			return nil, err
		}
		out = append(out, written)
	}
	if err := w.writeRecord(ctx, syncstate.KindMatchList, tournamentID, out, w.now().UTC()); err != nil {
		return nil, err
	}
	return out, nil
}

// WritePlayer upserts a player. A missing career keeps the stored one, and so
// do missing team and style fields.
func (w *EntityWriter) WritePlayer(ctx context.Context, item player.Player) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WritePlayer")
	defer span.End()

	written, err := w.upsertPlayer(ctx, item)
	if err != nil {
		return player.Player{}, err
	}
	if err := w.writeRecord(ctx, syncstate.KindPlayer, written.ID, written, written.LastSyncedAt); err != nil {
		return player.Player{}, err
	}
	return written, nil
}

// WritePlayerListing upserts a page of the provider's player catalogue.
// Listings carry no career, so no player record is written and a later read
// still fetches the full profile. Malformed entries are skipped.
func (w *EntityWriter) WritePlayerListing(ctx context.Context, items []player.Player) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WritePlayerListing")
	defer span.End()

	out := make([]player.Player, 0, len(items))
	for _, item := range items {
		saved, err := w.upsertPlayer(ctx, item)
		if err != nil {
			if isMalformed(err) {
				w.logger.WarnContext(ctx, "skip malformed catalogue player", "player_id", item.ID, "error", err)
				continue
			}
			return out, err
		}
		out = append(out, saved)
	}
	return out, nil
}

func (w *EntityWriter) upsertPlayer(ctx context.Context, item player.Player) (player.Player, error) {
	if err := item.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", provider.ErrMalformedUpstreamData, err)
	}
	stored, exists, err := w.repos.Players.GetByID(ctx, item.ID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player id=%s: %w", item.ID, err)
	}
	if exists {
		item = mergePlayer(stored, item)
	}
	item.LastSyncedAt = w.now().UTC()
	if err := w.repos.Players.Upsert(ctx, item); err != nil {
		return player.Player{}, fmt.Errorf("upsert player id=%s: %w", item.ID, err)
	}
	return item, nil
}

func mergePlayer(stored, incoming player.Player) player.Player {
	if len(incoming.Career) == 0 {
		incoming.Career = stored.Career
	}
	if incoming.TeamID == "" {
		incoming.TeamID = stored.TeamID
	}
	if incoming.Role == player.RoleUnknown {
		incoming.Role = stored.Role
	}
	if incoming.BattingStyle == "" {
		incoming.BattingStyle = stored.BattingStyle
	}
	if incoming.BowlingStyle == "" {
		incoming.BowlingStyle = stored.BowlingStyle
	}
	if incoming.Country == "" {
		incoming.Country = stored.Country
	}
	if incoming.ImageURL == "" {
		incoming.ImageURL = stored.ImageURL
	}
	return incoming
}

// WriteSquads materializes each squad's team and attaches its players to it.
func (w *EntityWriter) WriteSquads(ctx context.Context, tournamentID string, squads []team.Squad) ([]team.Squad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WriteSquads")
	defer span.End()

	syncedAt := w.now().UTC()
	out := make([]team.Squad, 0, len(squads))
	for _, squad := range squads {
		resolved, err := w.EnsureTeam(ctx, squad.Team)
		if err != nil {
			return nil, err
		}

		written := team.Squad{TournamentID: tournamentID, Team: resolved, LastSyncedAt: syncedAt}
		for _, item := range squad.Players {
			item.TeamID = resolved.ID
			saved, err := w.upsertPlayer(ctx, item)
			if err != nil {
				if isMalformed(err) {
					w.logger.WarnContext(ctx, "skip malformed squad player", "tournament_id", tournamentID, "team_id", resolved.ID, "error", err)
					continue
				}
				return nil, err
			}
			saved.Career = nil
			written.Players = append(written.Players, saved)
		}
		out = append(out, written)
	}
	if err := w.writeRecord(ctx, syncstate.KindSquad, tournamentID, out, syncedAt); err != nil {
		return nil, err
	}
	return out, nil
}

func (w *EntityWriter) WriteMatchStats(ctx context.Context, matchID string, items []playerstats.MatchStats) ([]playerstats.MatchStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.WriteMatchStats")
	defer span.End()

	syncedAt := w.now().UTC()
	frozen, ok, err := w.frozenStats(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if ok {
		w.logger.DebugContext(ctx, "keep frozen match stats", "match_id", matchID, "lines", len(frozen))
		if err := w.writeRecord(ctx, syncstate.KindMatchStats, matchID, frozen, syncedAt); err != nil {
			return nil, err
		}
		return frozen, nil
	}

	out := make([]playerstats.MatchStats, 0, len(items))
	for _, item := range items {
		item.MatchID = matchID
		item.LastSyncedAt = syncedAt
		if err := item.Validate(); err != nil {
			w.logger.WarnContext(ctx, "skip invalid stat line", "match_id", matchID, "player_id", item.PlayerID, "error", err)
			continue
		}
		out = append(out, item)
	}
	if err := w.repos.PlayerStats.UpsertMany(ctx, out); err != nil {
		return nil, fmt.Errorf("upsert match stats match_id=%s: %w", matchID, err)
	}
	if err := w.writeRecord(ctx, syncstate.KindMatchStats, matchID, out, syncedAt); err != nil {
		return nil, err
	}
	return out, nil
}

// WritePlayerMatchStats stores a single stat line fetched on its own.
func (w *EntityWriter) WritePlayerMatchStats(ctx context.Context, item playerstats.MatchStats) (playerstats.MatchStats, error) {
	item.LastSyncedAt = w.now().UTC()
	if err := item.Validate(); err != nil {
		return playerstats.MatchStats{}, fmt.Errorf("%w: %v", provider.ErrMalformedUpstreamData, err)
	}
	frozen, ok, err := w.frozenStats(ctx, item.MatchID)
	if err != nil {
		return playerstats.MatchStats{}, err
	}
	if ok {
		for _, line := range frozen {
			if line.PlayerID == item.PlayerID {
				return line, nil
			}
		}
	}
	if err := w.repos.PlayerStats.UpsertMany(ctx, []playerstats.MatchStats{item}); err != nil {
		return playerstats.MatchStats{}, fmt.Errorf("upsert player match stats key=%s: %w", item.Key(), err)
	}
	if err := w.writeRecord(ctx, syncstate.KindMatchStats, playerStatsEntityID(item.MatchID, item.PlayerID), item, item.LastSyncedAt); err != nil {
		return playerstats.MatchStats{}, err
	}
	return item, nil
}

// frozenStats returns the stored lines of a final match once a full stats
// sync has happened after the match was seen final. Those lines no longer
// change.
func (w *EntityWriter) frozenStats(ctx context.Context, matchID string) ([]playerstats.MatchStats, bool, error) {
	stored, ok, err := w.repos.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, false, fmt.Errorf("get match id=%s: %w", matchID, err)
	}
	if !ok || !stored.Status.Final() {
		return nil, false, nil
	}
	record, ok, err := w.repos.SyncRecords.Get(ctx, syncstate.KindMatchStats, matchID)
	if err != nil {
		return nil, false, fmt.Errorf("get match stats record match_id=%s: %w", matchID, err)
	}
	if !ok || record.LastSyncedAt.Before(stored.LastSyncedAt) {
		return nil, false, nil
	}
	lines, err := w.repos.PlayerStats.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, false, fmt.Errorf("list match stats match_id=%s: %w", matchID, err)
	}
	return lines, true, nil
}

func (w *EntityWriter) ensureTeamRef(ctx context.Context, ref match.TeamRef) (match.TeamRef, error) {
	resolved, err := w.EnsureTeam(ctx, team.Team{
		ExternalID: ref.ExternalID,
		Name:       ref.Name,
		ShortName:  ref.ShortName,
		ImageURL:   ref.ImageURL,
	})
	if err != nil {
		return match.TeamRef{}, err
	}
	ref.ID = resolved.ID
	ref.ExternalID = resolved.ExternalID
	if ref.Name == "" {
		ref.Name = resolved.Name
	}
	if ref.ShortName == "" {
		ref.ShortName = resolved.ShortName
	}
	return ref, nil
}

// EnsureTeam finds a stored team by external id, then normalized name, then
// fuzzy name. A team found by name gains the missing external id. An unknown
// team is created with a generated id.
func (w *EntityWriter) EnsureTeam(ctx context.Context, incoming team.Team) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityWriter.EnsureTeam")
	defer span.End()

	if incoming.ExternalID == "" && team.NormalizeName(incoming.Name) == "" {
		return team.Team{}, fmt.Errorf("%w: team without external id or name", provider.ErrMalformedUpstreamData)
	}

	stored, found, err := w.findTeam(ctx, incoming)
	if err != nil {
		return team.Team{}, err
	}

	now := w.now().UTC()
	if !found {
		newID, err := w.teamID.NewID()
		if err != nil {
			return team.Team{}, fmt.Errorf("generate team id: %w", err)
		}
		incoming.ID = newID
		incoming.LastSyncedAt = now
		if err := w.repos.Teams.Upsert(ctx, incoming); err != nil {
			return team.Team{}, fmt.Errorf("create team name=%s: %w", incoming.Name, err)
		}
		return incoming, nil
	}

	changed := false
	if stored.ExternalID == "" && incoming.ExternalID != "" {
		stored.ExternalID = incoming.ExternalID
		changed = true
	}
	if stored.ShortName == "" && incoming.ShortName != "" {
		stored.ShortName = incoming.ShortName
		changed = true
	}
	if stored.ImageURL == "" && incoming.ImageURL != "" {
		stored.ImageURL = incoming.ImageURL
		changed = true
	}
	if stored.Name == "" && incoming.Name != "" {
		stored.Name = incoming.Name
		changed = true
	}
	if changed {
		stored.LastSyncedAt = now
		if err := w.repos.Teams.Upsert(ctx, stored); err != nil {
			return team.Team{}, fmt.Errorf("update team id=%s: %w", stored.ID, err)
		}
	}
	return stored, nil
}

func (w *EntityWriter) findTeam(ctx context.Context, incoming team.Team) (team.Team, bool, error) {
	if incoming.ExternalID != "" {
		item, ok, err := w.repos.Teams.GetByExternalID(ctx, incoming.ExternalID)
		if err != nil {
			return team.Team{}, false, fmt.Errorf("get team external_id=%s: %w", incoming.ExternalID, err)
		}
		if ok {
			return item, true, nil
		}
	}

	normalized := team.NormalizeName(incoming.Name)
	if normalized == "" {
		return team.Team{}, false, nil
	}
	item, ok, err := w.repos.Teams.GetByName(ctx, normalized)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("get team name=%s: %w", incoming.Name, err)
	}
	if ok {
		return item, true, nil
	}

	if len(normalized) < minFuzzyTeamNameSize {
		return team.Team{}, false, nil
	}
	names, err := w.repos.Teams.ListNames(ctx)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("list team names: %w", err)
	}
	bestID, bestDistance := "", maxTeamNameDistance+1
	for teamID, name := range names {
		candidate := team.NormalizeName(name)
		if len(candidate) < minFuzzyTeamNameSize {
			continue
		}
		distance, ok := teamNameDistance(normalized, candidate)
		if !ok {
			continue
		}
		if distance < bestDistance || (distance == bestDistance && teamID < bestID) {
			bestID, bestDistance = teamID, distance
		}
	}
	if bestID == "" {
		return team.Team{}, false, nil
	}

	item, ok, err = w.repos.Teams.GetByID(ctx, bestID)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("get team id=%s: %w", bestID, err)
	}
	if ok && incoming.ExternalID != "" && item.ExternalID != "" && item.ExternalID != incoming.ExternalID {
		// Close names but different provider ids are different teams.
		return team.Team{}, false, nil
	}
	if ok {
		w.logger.DebugContext(ctx, "team resolved by fuzzy name", "incoming", incoming.Name, "stored", item.Name, "distance", bestDistance)
	}
	return item, ok, nil
}

// teamNameDistance compares two normalized names word by word. Names with a
// different word count, or differing in a short word such as a squad suffix
// ("a", "w", "u19"), never refer to the same team.
func teamNameDistance(a, b string) (int, bool) {
	wordsA, wordsB := strings.Fields(a), strings.Fields(b)
	if len(wordsA) != len(wordsB) {
		return 0, false
	}
	total := 0
	for idx := range wordsA {
		if wordsA[idx] == wordsB[idx] {
			continue
		}
		if len(wordsA[idx]) < minFuzzyTeamWordSize || len(wordsB[idx]) < minFuzzyTeamWordSize {
			return 0, false
		}
		total += fuzzy.LevenshteinDistance(wordsA[idx], wordsB[idx])
		if total > maxTeamNameDistance {
			return 0, false
		}
	}
	return total, true
}

func (w *EntityWriter) writeRecord(ctx context.Context, kind syncstate.Kind, entityID string, value any, syncedAt time.Time) error {
	payload, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s record id=%s: %w", kind, entityID, err)
	}
	record := syncstate.Record{
		Kind:         kind,
		EntityID:     entityID,
		Payload:      payload,
		LastSyncedAt: syncedAt,
	}
	if err := w.repos.SyncRecords.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert %s record id=%s: %w", kind, entityID, err)
	}
	return nil
}

func playerStatsEntityID(matchID, playerID string) string {
	return matchID + "/" + playerID
}

func isMalformed(err error) bool {
	return err != nil && errors.Is(err, provider.ErrMalformedUpstreamData)
}
