package bolt

import (
	"encoding/json"
	"slices"

	bolt "go.etcd.io/bbolt"
)

const (
	BucketTasks       = "tasks"
	BucketProjects    = "projects"
	BucketUsers       = "users"
	BucketUserByEmail = "users_by_email"
)

// Buckets lists every bucket the repositories in this package expect.
var Buckets = []string{BucketTasks, BucketProjects, BucketUsers, BucketUserByEmail}

// record keeps the insertion sequence next to the entity so listings come
// back in creation order.
type record[T any] struct {
	Seq    uint64 `json:"seq"`
	Entity T      `json:"entity"`
}

func getRecord[T any](b *bolt.Bucket, id string) (*record[T], error) {
	raw := b.Get([]byte(id))
	if raw == nil {
		return nil, nil
	}
	var rec record[T]
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func putRecord[T any](b *bolt.Bucket, id string, rec record[T]) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return b.Put([]byte(id), payload)
}

// scan decodes every record in b, skipping undecodable values, and returns
// them ordered by sequence.
func scan[T any](b *bolt.Bucket) []record[T] {
	var out []record[T]
	_ = b.ForEach(func(_, v []byte) error {
		var rec record[T]
		if err := json.Unmarshal(v, &rec); err != nil {
			return nil
		}
		out = append(out, rec)
		return nil
	})
	slices.SortFunc(out, func(a, b record[T]) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return out
}
