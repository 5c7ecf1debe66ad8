// Package store provides the Cassandra session used by the schema manager
// and the writer.
//
// Callers depend on the Session interface; CQLSession is the gocql-backed
// implementation. Connection pooling, retries and consistency are the
// driver's concern and are configured once from config.StorageConfig.
package store
