// Package scraper fetches and parses the two sites the dashboard is built from.
//
// The shard site publishes one page per calendar day with the shard type, the
// landing map, rewards and the eruption windows. The 9-bit site publishes the
// day's treasure and seasonal candle realms on its top page and links to a
// separate page listing the daily quests in Japanese.
//
// Every request takes a context and is retried with exponential backoff on
// network errors and 5xx responses. 4xx responses fail immediately.
package scraper
