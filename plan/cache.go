package plan

import lru "github.com/hashicorp/golang-lru/v2"

// Cache memoizes Access plans by Fingerprint, so repeated
// queries of identical shape skip Choose's index-matching scan. The
// query is still validated and normalized by Plan before the lookup.
type Cache struct {
	lru *lru.Cache[Fingerprint, Access]
}

// NewCache builds a plan cache holding at most size entries, evicting
// least-recently-used plans once full.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[Fingerprint, Access](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// Get looks up a previously cached access plan for lp's fingerprint.
func (c *Cache) Get(fp Fingerprint) (Access, bool) {
	return c.lru.Get(fp)
}

// Put stores an access plan under lp's fingerprint.
func (c *Cache) Put(fp Fingerprint, a Access) {
	c.lru.Add(fp, a)
}

// Len reports the number of cached plans.
func (c *Cache) Len() int { return c.lru.Len() }
