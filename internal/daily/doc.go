// Package daily provides the normalized records behind the daily dashboard.
//
// Scraped pages are reduced to a Report: today's shard eruptions, the daily
// quests, the treasure and seasonal candle rotations and the event clock.
// The package also holds the text rules used to clean scraped strings
// (meridiem times, shard wording, quest term translation, candle location
// tables) and the snapshot diff used to detect what changed between builds.
package daily
