package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rickgao/tickstore/internal/model"
)

// MaxIdentifierLength is the Cassandra limit for keyspace and table names.
const MaxIdentifierLength = 48

// ErrInvalidIdentifier is returned for keyspace or table names that cannot be
// used unquoted in CQL.
var ErrInvalidIdentifier = errors.New("invalid CQL identifier")

var identifierRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Table identifies a destination table.
type Table struct {
	Keyspace string
	Name     string
	Kind     model.Kind
}

// NewTable derives the table for a topic and record kind.
// Identifiers are lower-cased, as CQL folds unquoted names.
func NewTable(keyspace, topic string, kind model.Kind) (Table, error) {
	suffix := kind.TableSuffix()
	if suffix == "" {
		return Table{}, fmt.Errorf("no table for record kind %q", kind)
	}

	t := Table{
		Keyspace: strings.ToLower(keyspace),
		Name:     strings.ToLower(topic) + "_" + suffix,
		Kind:     kind,
	}
	if err := validateIdentifier(t.Keyspace); err != nil {
		return Table{}, fmt.Errorf("keyspace: %w", err)
	}
	if err := validateIdentifier(t.Name); err != nil {
		return Table{}, fmt.Errorf("table for topic %q: %w", topic, err)
	}
	return t, nil
}

// Qualified returns keyspace.name.
func (t Table) Qualified() string {
	return t.Keyspace + "." + t.Name
}

func validateIdentifier(name string) error {
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentifier, name, MaxIdentifierLength)
	}
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// CreateKeyspaceCQL returns the keyspace creation statement.
func CreateKeyspaceCQL(keyspace string, replicationFactor int) string {
	return fmt.Sprintf(
		"CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		keyspace, replicationFactor,
	)
}

// CreateTableCQL returns the creation statement for t. Rows are keyed by
// (symbol, time, price) and clustered newest first.
func CreateTableCQL(t Table) string {
	switch t.Kind {
	case model.KindBook:
		return `CREATE TABLE IF NOT EXISTS ` + t.Qualified() + ` (
			symbol text,
			price double,
			time timestamp,
			volume bigint,
			type text,
			PRIMARY KEY (symbol, time, price)
		) WITH CLUSTERING ORDER BY (time DESC, price ASC)`
	case model.KindTick:
		return `CREATE TABLE IF NOT EXISTS ` + t.Qualified() + ` (
			symbol text,
			bid double,
			price double,
			ask double,
			time timestamp,
			volume bigint,
			type text,
			cumbuy bigint,
			cumsell bigint,
			cumdelta bigint,
			PRIMARY KEY (symbol, time, price)
		) WITH CLUSTERING ORDER BY (time DESC, price ASC)`
	default:
		return ""
	}
}

// InsertCQL returns the upsert statement for t. Bind order matches the
// table's column list.
func InsertCQL(t Table) string {
	switch t.Kind {
	case model.KindBook:
		return `INSERT INTO ` + t.Qualified() + ` (symbol, price, time, volume, type) VALUES (?, ?, ?, ?, ?)`
	case model.KindTick:
		return `INSERT INTO ` + t.Qualified() +
			` (symbol, bid, price, ask, time, volume, type, cumbuy, cumsell, cumdelta) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	default:
		return ""
	}
}
