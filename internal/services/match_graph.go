package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/pkg/models"
)

// MatchGraph mirrors weekly matches as MATCHED_WITH edges between User
// nodes, one edge per user pair and week.
type MatchGraph struct {
	driver neo4j.DriverWithContext
	logger *logrus.Logger
}

func NewMatchGraph(driver neo4j.DriverWithContext, logger *logrus.Logger) *MatchGraph {
	return &MatchGraph{driver: driver, logger: logger}
}

const recordMatchCypher = `
	MERGE (u:User {id: $user_id})
	MERGE (m:User {id: $matched_user_id})
	MERGE (u)-[r:MATCHED_WITH {week_id: $week_id}]->(m)
	SET r.score = $score,
		r.shared_artists = $shared_artists,
		r.shared_genres = $shared_genres,
		r.updated_at = datetime()`

func matchEdgeParams(record models.MatchRecord) map[string]interface{} {
	artists := make([]string, len(record.SharedArtists))
	for i, a := range record.SharedArtists {
		artists[i] = a.ArtistName
	}
	genres := record.SharedGenres
	if genres == nil {
		genres = []string{}
	}

	return map[string]interface{}{
		"user_id":         record.UserID,
		"matched_user_id": record.MatchedUserID,
		"week_id":         record.WeekID,
		"score":           record.SimilarityScore,
		"shared_artists":  artists,
		"shared_genres":   genres,
	}
}

func (g *MatchGraph) RecordMatch(ctx context.Context, record models.MatchRecord) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		result, err := tx.Run(ctx, recordMatchCypher, matchEdgeParams(record))
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to record match edge %s: %w", record.ID, err)
	}

	g.logger.WithField("match_id", record.ID).Debug("Match edge recorded")
	return nil
}
