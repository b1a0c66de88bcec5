package redis

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/v9"

	"github.com/RichardKnop/ragchat"
)

const (
	testIndex     = "hsdemocracy-idx"
	testPrefix    = "doc:"
	testVectorDim = 32
)

func (s *RedisTestSuite) TestSearchDocuments() {
	ctx, cancel := testContext()
	defer cancel()

	s.createIndex(ctx)

	var (
		texts = []string{
			"Democracy is government by the people.",
			"Citizens elect representatives.",
			"Photosynthesis converts light into energy.",
		}
		grades = []string{"high-school", "high-school", "college"}
		// Distance from the search vector grows with the offset.
		vectors = []ragchat.Vector{
			testVector(testVectorDim, 2),
			testVector(testVectorDim, 0.5),
			testVector(testVectorDim, 1),
		}
		searchVector = testVector(testVectorDim, 0)
	)

	for i := range texts {
		s.saveDocument(ctx, texts[i], grades[i], vectors[i])
	}

	results, err := s.adapter.SearchDocuments(ctx, ragchat.DocumentFilter{
		Index:  testIndex,
		Vector: searchVector,
	}, 3)
	s.Require().NoError(err)
	s.Require().Len(results, 3)
	s.Equal(texts[1], results[0].Text)
	s.Equal(texts[2], results[1].Text)
	s.Equal(texts[0], results[2].Text)
	s.GreaterOrEqual(results[0].Score, results[1].Score)
	s.Equal("civics.pdf", results[0].Metadata["source"])

	results, err = s.adapter.SearchDocuments(ctx, ragchat.DocumentFilter{
		Index:      testIndex,
		Vector:     searchVector,
		Attributes: ragchat.Filters{"grade": "high-school"},
	}, 3)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(texts[1], results[0].Text)
	s.Equal(texts[0], results[1].Text)
	s.Equal("high-school", results[0].Metadata["grade"])

	results, err = s.adapter.SearchDocuments(ctx, ragchat.DocumentFilter{
		Index:  testIndex,
		Vector: searchVector,
	}, 1)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
}

func (s *RedisTestSuite) TestSearchDocuments_MissingIndex() {
	ctx, cancel := testContext()
	defer cancel()

	_, err := s.adapter.SearchDocuments(ctx, ragchat.DocumentFilter{
		Index:  "missing-idx",
		Vector: testVector(testVectorDim, 0),
	}, 3)
	s.Require().Error(err)
}

func (s *RedisTestSuite) createIndex(ctx context.Context) {
	_, err := s.client.FTCreate(ctx,
		testIndex,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{testPrefix},
		},
		&redis.FieldSchema{
			FieldName: "content",
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: "source",
			FieldType: redis.SearchFieldTypeTag,
		},
		&redis.FieldSchema{
			FieldName: "grade",
			FieldType: redis.SearchFieldTypeTag,
		},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				HNSWOptions: &redis.FTHNSWOptions{
					Dim:            testVectorDim,
					DistanceMetric: "L2",
					Type:           "FLOAT32",
				},
			},
		},
	).Result()
	s.Require().NoError(err)
}

func (s *RedisTestSuite) saveDocument(ctx context.Context, text, grade string, vector ragchat.Vector) {
	key := fmt.Sprintf("%s%v", testPrefix, uuid.Must(uuid.NewV4()))
	fields, err := s.client.HSet(ctx,
		key,
		map[string]any{
			"content":   text,
			"source":    "civics.pdf",
			"grade":     grade,
			"embedding": floatsToBytes(vector),
		},
	).Result()
	s.Require().NoError(err)
	s.Require().EqualValues(4, fields)
}

// testVector returns a vector with every component close to offset.
func testVector(dim int, offset float32) ragchat.Vector {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = offset + rand.Float32()*0.01
	}
	return vec
}
