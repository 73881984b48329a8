// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coldstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoArchive is the production cold store on the official Mongo driver.
// Writer and reader roles should use separate instances built from separate
// clients.
type MongoArchive struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials Mongo and binds the archive collection.
func Connect(ctx context.Context, uri, database, collection string) (*MongoArchive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoArchive{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects the underlying client.
func (m *MongoArchive) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Upsert merges a day's aggregate cells into the day document with $inc and
// refreshes last_updated. Repeated upserts add; crash-retry safety depends on
// the archiver deleting the hot copy before re-reading it.
func (m *MongoArchive) Upsert(ctx context.Context, day string, incs map[string]float64) error {
	if len(incs) == 0 {
		return nil
	}
	incDoc := bson.M{}
	for field, v := range incs {
		incDoc[field] = v
	}
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"date": day},
		bson.M{
			"$inc": incDoc,
			"$set": bson.M{"last_updated": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert day %s: %w", day, err)
	}
	return nil
}

// FindDays fetches the documents for the given days in one query,
// projecting only the fields the query service merges.
func (m *MongoArchive) FindDays(ctx context.Context, days []string) ([]DayDoc, error) {
	if len(days) == 0 {
		return nil, nil
	}
	cursor, err := m.coll.Find(ctx,
		bson.M{"date": bson.M{"$in": days}},
		options.Find().SetProjection(bson.M{"_id": 0, "date": 1, "deposits": 1, "withdrawals": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find days: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []DayDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	return docs, nil
}
