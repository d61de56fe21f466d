// Package database is the MongoDB ledger store. One method per query, a
// fresh connection per call; the two-collection lot-debit path runs inside
// a session transaction so lots and the parent total cannot diverge.
package database

import (
	"context"
	"errors"
	"fmt"
	"teamvest/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionUsers              = "users"
	collectionInvest             = "invest"
	collectionPlatinumInvest     = "platinum_invest"
	collectionLots               = "investment_lots"
	collectionSubteam            = "subteam"
	collectionTeamIncome         = "team_income"
	collectionPlatinumTeamIncome = "platinum_team_income"
	collectionRewardClaimed      = "reward_claimed"
	collectionUserProgress       = "user_progress"
	collectionRank               = "rank"
	collectionLagCompletion      = "lag_completion"
	collectionWallet             = "wallet"
	collectionWalletHistory      = "wallet_history"
	collectionWithdrawals        = "withdrawal_requests"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional update matched no document
// because the record is already in a terminal or identical state.
var ErrConflict = errors.New("state conflict")

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("mongodb find: %w", err)
}
