// Package cache implements a bounded, in-memory key–value cache with
// least-recently-used eviction.
//
// Goals for this package:
//   - Keep the core data structures explicit (map + doubly-linked list)
//   - O(1) Get/Put, with Get and Put both refreshing recency
//   - Contains and Peek are pure reads and leave recency alone
//   - A missing key is reported through the NotFound sentinel, not an error
//   - Concurrency-safe behind a single mutex
package cache
