package database

import (
	"teamvest/entity"

	"go.mongodb.org/mongo-driver/bson"
)

// AllSubteams bulk-loads the whole referral graph for in-memory joins.
func (m *MongoDB) AllSubteams() ([]entity.Subteam, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionSubteam)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var edges []entity.Subteam
	if err = cursor.All(m.ctx, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

// TeamIncomes returns every commission event owner has collected, merging
// the normal and platinum payout collections with the plan tagged.
func (m *MongoDB) TeamIncomes(owner string) ([]entity.TeamIncome, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	var all []entity.TeamIncome
	for _, src := range []struct {
		name string
		plan entity.Plan
	}{
		{collectionTeamIncome, entity.PlanNormal},
		{collectionPlatinumTeamIncome, entity.PlanPlatinum},
	} {
		cursor, err := db.Collection(src.name).Find(m.ctx, bson.D{{Key: "email_owner", Value: owner}})
		if err != nil {
			return nil, err
		}
		var rows []entity.TeamIncome
		err = cursor.All(m.ctx, &rows)
		cursor.Close(m.ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Plan = src.plan
		}
		all = append(all, rows...)
	}
	return all, nil
}
