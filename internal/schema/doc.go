// Package schema provisions destination tables on demand.
//
// Each (keyspace, topic, kind) maps to one table, <keyspace>.<topic>_book or
// <keyspace>.<topic>_tick, created with CREATE TABLE IF NOT EXISTS the first
// time a message needs it. Successful provisioning is remembered for the
// life of the process; failures are not, so the next message retries.
package schema
