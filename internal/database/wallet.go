package database

import (
	"fmt"
	"teamvest/entity"
	"teamvest/lib/money"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// adjustWallet moves the balance in the direction of kind and appends the
// history entry, both inside one transaction. The arithmetic lives on
// entity.Wallet so formatting never drifts the stored value.
func (m *MongoDB) adjustWallet(email string, amount decimal.Decimal, kind entity.WalletEntryKind, note string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	session, err := connection.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb session: %w", err)
	}
	defer session.EndSession(m.ctx)

	now := time.Now().UTC()
	db := connection.Database(m.database)
	_, err = session.WithTransaction(m.ctx, func(sc mongo.SessionContext) (interface{}, error) {
		wallets := db.Collection(collectionWallet)
		var wallet entity.Wallet
		err := wallets.FindOne(sc, bson.D{{Key: "email", Value: email}}).Decode(&wallet)
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, err
		}
		wallet.Email = email
		if err := wallet.Apply(kind, amount); err != nil {
			return nil, err
		}

		filter := bson.D{{Key: "email", Value: email}}
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "email", Value: email},
			{Key: "balance", Value: wallet.Balance},
			{Key: "updated_at", Value: now},
		}}}
		opts := options.Update().SetUpsert(true)
		if _, err := wallets.UpdateOne(sc, filter, update, opts); err != nil {
			return nil, err
		}

		entry := entity.WalletEntry{
			ID:        uuid.New().String(),
			Email:     email,
			Kind:      kind,
			Amount:    money.Format(amount),
			Note:      note,
			CreatedAt: now,
		}
		if _, err := db.Collection(collectionWalletHistory).InsertOne(sc, entry); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (m *MongoDB) CreditWallet(email string, amount decimal.Decimal, note string) error {
	return m.adjustWallet(email, amount, entity.WalletCredit, note)
}

func (m *MongoDB) GetWithdrawal(id string) (*entity.WithdrawalRequest, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionWithdrawals)
	var req entity.WithdrawalRequest
	err = collection.FindOne(m.ctx, bson.D{{Key: "id", Value: id}}).Decode(&req)
	if err != nil {
		return nil, m.findError(err)
	}
	return &req, nil
}

// SetWithdrawalStatus is conditional on the current status, so a repeated
// operator action surfaces as a conflict instead of a silent overwrite.
func (m *MongoDB) SetWithdrawalStatus(id string, from, to entity.WithdrawalStatus) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionWithdrawals)
	filter := bson.D{{Key: "id", Value: id}, {Key: "status", Value: from}}
	now := time.Now().UTC()
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: to},
		{Key: "processed_at", Value: now},
	}}}
	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (m *MongoDB) CountWithdrawals(status entity.WithdrawalStatus) (int64, error) {
	connection, err := m.connect()
	if err != nil {
		return 0, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionWithdrawals)
	return collection.CountDocuments(m.ctx, bson.D{{Key: "status", Value: status}})
}
