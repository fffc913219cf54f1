package sqlengine

import (
	"errors"
	"slices"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

type toSQLer interface {
	ToSQL() (string, []any, error)
}

func (rs RecordStore) toSQL(stmt toSQLer) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (rs RecordStore) buildFetchQuery(kind schedulestore.Kind, name string) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(string(rs.dialect)).
		From(rs.tableName).
		Select(colBody, colVersion, colCreatedAtNS).
		Where(goqu.C(colKind).Eq(string(kind)), goqu.C(colName).Eq(name))

	return rs.toSQL(selectStmt)
}

func (rs RecordStore) buildSelectQuery(
	kind schedulestore.Kind,
	filter schedulestore.Filter,
	sort schedulestore.Sort,
	page schedulestore.PageRequest,
) (sqlQueryString, error) {

	selectStmt := goqu.Dialect(string(rs.dialect)).
		From(rs.tableName).
		Select(colBody, colVersion, colCreatedAtNS).
		Where(rs.whereClause(kind, filter)...).
		Order(orderClause(sort)...)

	if !page.IsUnpaged() {
		selectStmt = selectStmt.Limit(uint(page.Size)).Offset(uint(page.Offset()))
	}

	return rs.toSQL(selectStmt)
}

func (rs RecordStore) buildCountQuery(kind schedulestore.Kind, filter schedulestore.Filter) (sqlQueryString, error) {
	countStmt := goqu.Dialect(string(rs.dialect)).
		From(rs.tableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(rs.whereClause(kind, filter)...)

	return rs.toSQL(countStmt)
}

// buildInsertQuery builds an INSERT which only inserts if no record with the same kind and name exists,
// so a duplicate shows up as zero affected rows.
func (rs RecordStore) buildInsertQuery(record schedulestore.Record) (sqlQueryString, error) {
	body, err := json.MarshalToString(record)
	if err != nil {
		return "", errors.Join(ErrEncodingRecordFailed, err)
	}

	builder := goqu.Dialect(string(rs.dialect))
	meta := record.Meta()

	existsStmt := builder.
		From(rs.tableName).
		Select(goqu.L(selectOne)).
		Where(goqu.C(colKind).Eq(string(record.Kind())), goqu.C(colName).Eq(meta.Name))

	cols := []any{colKind, colName, colVersion, colCreatedAtNS, colDeleting, colBody}
	vals := []any{
		goqu.V(string(record.Kind())),
		goqu.V(meta.Name),
		goqu.V(meta.Version),
		goqu.V(meta.CreationTimestamp.UnixNano()),
		goqu.V(deletingValue(meta)),
		rs.bodyValue(body),
	}

	for _, column := range indexColumns(record) {
		cols = append(cols, column.name)
		vals = append(vals, goqu.V(column.value))
	}

	insertStmt := builder.
		Insert(rs.tableName).
		Cols(cols...).
		FromQuery(builder.Select(vals...).Where(goqu.L(notExists, existsStmt)))

	return rs.toSQL(insertStmt)
}

// buildUpdateQuery builds an UPDATE guarded by the expected version.
func (rs RecordStore) buildUpdateQuery(record schedulestore.Record, expectedVersion int64) (sqlQueryString, error) {
	body, err := json.MarshalToString(record)
	if err != nil {
		return "", errors.Join(ErrEncodingRecordFailed, err)
	}

	meta := record.Meta()

	set := goqu.Record{
		colVersion:  meta.Version,
		colDeleting: deletingValue(meta),
		colBody:     rs.bodyValue(body),
	}

	for _, column := range indexColumns(record) {
		set[column.name] = column.value
	}

	updateStmt := goqu.Dialect(string(rs.dialect)).
		Update(rs.tableName).
		Set(set).
		Where(
			goqu.C(colKind).Eq(string(record.Kind())),
			goqu.C(colName).Eq(meta.Name),
			goqu.C(colVersion).Eq(expectedVersion),
		)

	return rs.toSQL(updateStmt)
}

// bodyValue casts the JSON text for the JSONB column in postgres.
func (rs RecordStore) bodyValue(body string) exp.LiteralExpression {
	if rs.dialect == DialectPostgres {
		return goqu.L(castJsonb, body)
	}

	return goqu.V(body)
}

// whereClause restricts to the kind and adds the filter's predicates.
// A predicate on a field that is not indexed for the kind matches nothing, like in the memory engine.
func (rs RecordStore) whereClause(kind schedulestore.Kind, filter schedulestore.Filter) []exp.Expression {
	where := []exp.Expression{goqu.C(colKind).Eq(string(kind))}
	if filter.IsLiveOnly() {
		where = append(where, goqu.C(colDeleting).Eq(0))
	}

	indexed := schedulestore.IndexedFields(kind)

	for _, predicate := range filter.Predicates() {
		if !slices.Contains(indexed, predicate.Field()) {
			where = append(where, goqu.L(matchNothing))
			continue
		}

		if predicate.Field() == schedulestore.FieldCreationTimestamp {
			createdAt, err := time.Parse(time.RFC3339Nano, predicate.Val())
			if err != nil {
				where = append(where, goqu.L(matchNothing))
				continue
			}

			where = append(where, goqu.C(colCreatedAtNS).Eq(createdAt.UnixNano()))
			continue
		}

		where = append(where, goqu.C(fieldColumns[predicate.Field()]).Eq(predicate.Val()))
	}

	return where
}

// orderClause translates the sort, the name is the final tie-breaker.
func orderClause(sort schedulestore.Sort) []exp.OrderedExpression {
	order := make([]exp.OrderedExpression, 0, len(sort)+1)

	for _, o := range sort {
		column := goqu.I(fieldColumns[o.Field])

		if o.Descending {
			order = append(order, column.Desc())
		} else {
			order = append(order, column.Asc())
		}
	}

	return append(order, goqu.I(colName).Asc())
}

type indexColumn struct {
	name  string
	value string
}

// deletingValue is the column value of the deletion marker, 1 for records being deleted.
func deletingValue(meta *schedulestore.Metadata) int {
	if meta.IsDeleting() {
		return 1
	}

	return 0
}

// indexColumns returns the kind specific index columns with their values.
func indexColumns(record schedulestore.Record) []indexColumn {
	columns := make([]indexColumn, 0)

	for _, field := range schedulestore.IndexedFields(record.Kind()) {
		if field == schedulestore.FieldMetadataName || field == schedulestore.FieldCreationTimestamp {
			continue
		}

		value, _ := record.IndexValue(field)
		columns = append(columns, indexColumn{name: fieldColumns[field], value: value})
	}

	return columns
}
