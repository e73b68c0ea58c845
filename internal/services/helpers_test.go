package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// toDoc converts a model into the bson.D the mock deployment replies with.
func toDoc(t *testing.T, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func cursor(ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func count(ns string, n int32) bson.D {
	if n == 0 {
		return cursor(ns)
	}
	return cursor(ns, bson.D{{Key: "n", Value: n}})
}

func duplicateKey() bson.D {
	return mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"})
}
