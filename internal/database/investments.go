package database

import (
	"fmt"
	"teamvest/entity"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func investCollection(plan entity.Plan) string {
	if plan == entity.PlanPlatinum {
		return collectionPlatinumInvest
	}
	return collectionInvest
}

// GetInvestment returns the open (non-closed) investment for the pair.
func (m *MongoDB) GetInvestment(email string, plan entity.Plan) (*entity.Investment, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(investCollection(plan))
	filter := bson.D{{Key: "email", Value: email}, {Key: "is_closed", Value: false}}
	var inv entity.Investment
	err = collection.FindOne(m.ctx, filter).Decode(&inv)
	if err != nil {
		return nil, m.findError(err)
	}
	return &inv, nil
}

func (m *MongoDB) AllOpenInvestments(plan entity.Plan) ([]*entity.Investment, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(investCollection(plan))
	cursor, err := collection.Find(m.ctx, bson.D{{Key: "is_closed", Value: false}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var invs []*entity.Investment
	if err = cursor.All(m.ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// OpenLots returns open lots for the pair ordered oldest principal first,
// the order FIFO debits consume them in.
func (m *MongoDB) OpenLots(email string, plan entity.Plan) ([]*entity.InvestmentLot, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLots)
	filter := bson.D{{Key: "email", Value: email}, {Key: "plan", Value: plan}, {Key: "closed", Value: false}}
	opts := options.Find().SetSort(bson.D{{Key: "invest_date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var lots []*entity.InvestmentLot
	if err = cursor.All(m.ctx, &lots); err != nil {
		return nil, err
	}
	return lots, nil
}

func (m *MongoDB) AllOpenLots(plan entity.Plan) ([]*entity.InvestmentLot, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionLots)
	filter := bson.D{{Key: "plan", Value: plan}, {Key: "closed", Value: false}}
	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var lots []*entity.InvestmentLot
	if err = cursor.All(m.ctx, &lots); err != nil {
		return nil, err
	}
	return lots, nil
}

// ApplyDebit writes a FIFO debit plan: every lot mutation plus the parent
// investment's new total, inside one session transaction. A crash can no
// longer leave the lot ledger and the aggregate total diverged.
func (m *MongoDB) ApplyDebit(email string, plan entity.Plan, mutations []entity.LotMutation, newTotal string) error {
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
		lots := db.Collection(collectionLots)
		for _, mut := range mutations {
			filter := bson.D{{Key: "email", Value: email}, {Key: "lot_index", Value: mut.LotIndex}}
			update := bson.D{{Key: "$set", Value: bson.D{
				{Key: "amount", Value: mut.NewAmount},
				{Key: "closed", Value: mut.Closed},
				{Key: "updated_at", Value: now},
			}}}
			if _, err := lots.UpdateOne(sc, filter, update); err != nil {
				return nil, err
			}
		}
		invest := db.Collection(investCollection(plan))
		filter := bson.D{{Key: "email", Value: email}, {Key: "is_closed", Value: false}}
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "total_amount", Value: newTotal},
			{Key: "updated_at", Value: now},
		}}}
		res, err := invest.UpdateOne(sc, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}

// CloseInvestment marks the investment and all its open lots closed.
func (m *MongoDB) CloseInvestment(email string, plan entity.Plan) error {
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
		lots := db.Collection(collectionLots)
		filter := bson.D{{Key: "email", Value: email}, {Key: "plan", Value: plan}, {Key: "closed", Value: false}}
		update := bson.D{{Key: "$set", Value: bson.D{
			{Key: "amount", Value: "0"},
			{Key: "closed", Value: true},
			{Key: "updated_at", Value: now},
		}}}
		if _, err := lots.UpdateMany(sc, filter, update); err != nil {
			return nil, err
		}
		invest := db.Collection(investCollection(plan))
		res, err := invest.UpdateOne(sc,
			bson.D{{Key: "email", Value: email}, {Key: "is_closed", Value: false}},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "total_amount", Value: "0"},
				{Key: "is_closed", Value: true},
				{Key: "updated_at", Value: now},
			}}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}
