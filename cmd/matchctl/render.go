package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/temcen/tastematch/internal/messaging"
	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/pkg/models"
)

const dateFormat = "2006-01-02 15:04"

func renderTable(out io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(out)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	return nil
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func renderSummary(out io.Writer, s *services.RoundSummary) error {
	return renderTable(out, []string{"Field", "Value"}, [][]string{
		{"Round", s.RoundID},
		{"Week", s.WeekID},
		{"Started", s.StartedAt.Format(dateFormat)},
		{"Users considered", strconv.Itoa(s.UsersConsidered)},
		{"Users matched", strconv.Itoa(s.UsersMatched)},
		{"Matches created", strconv.Itoa(s.MatchesCreated)},
		{"Failures", strconv.Itoa(s.Failures)},
		{"Duration", fmt.Sprintf("%dms", s.DurationMS)},
	})
}

func renderComparison(out io.Writer, r models.SimilarityResult) error {
	fmt.Fprintf(out, "%s vs %s\n", r.UserAID, r.UserBID)
	err := renderTable(out, []string{"Component", "Score"}, [][]string{
		{"Artist", score(r.ArtistSimilarity)},
		{"Genre", score(r.GenreSimilarity)},
		{"Rating", score(r.RatingCorrelation)},
		{"Discovery", score(r.DiscoveryPotential)},
		{"Overall", score(r.OverallScore)},
	})
	if err != nil {
		return err
	}

	if len(r.SharedArtists) > 0 {
		rows := make([][]string, 0, len(r.SharedArtists))
		for _, a := range r.SharedArtists {
			rows = append(rows, []string{a.ArtistName, rating(a.RatingA), rating(a.RatingB), strconv.Itoa(a.CommonSongCount)})
		}
		if err := renderTable(out, []string{"Shared artist", r.UserAID, r.UserBID, "Common songs"}, rows); err != nil {
			return err
		}
	}
	if len(r.SharedGenres) > 0 {
		fmt.Fprintf(out, "Shared genres: %s\n", strings.Join(r.SharedGenres, ", "))
	}
	return nil
}

func rating(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func renderProfile(out io.Writer, p *models.TasteProfile, n int) error {
	if !p.Eligible() {
		fmt.Fprintf(out, "%s has no public listening history\n", p.UserID)
		return nil
	}

	fmt.Fprintf(out, "%s: %d logs, average rating %.2f, diversity %.3f\n",
		p.UserID, p.TotalLogs, p.AverageRating, p.DiversityIndex)

	artists := p.TopArtists
	if n > 0 && len(artists) > n {
		artists = artists[:n]
	}
	rows := make([][]string, 0, len(artists))
	for i, a := range artists {
		rows = append(rows, []string{strconv.Itoa(i + 1), a, strconv.Itoa(p.ArtistFrequency[a])})
	}
	if err := renderTable(out, []string{"#", "Artist", "Logs"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for i, g := range p.TopGenres {
		rows = append(rows, []string{strconv.Itoa(i + 1), g, strconv.Itoa(p.GenreFrequency[g])})
	}
	return renderTable(out, []string{"#", "Genre", "Logs"}, rows)
}

func formatNotification(n messaging.MatchNotification) string {
	return fmt.Sprintf("%s  %s -> %s  week %s  score %s",
		n.CreatedAt.Format(dateFormat), n.UserID, n.MatchedUserID, n.WeekID, score(n.SimilarityScore))
}
