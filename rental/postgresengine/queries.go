package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

// sqlBuilder is satisfied by all goqu datasets.
type sqlBuilder interface {
	ToSQL() (string, []any, error)
}

// scanFunc turns the current row into a domain value.
type scanFunc[T any] func(rows adapters.DBRows) (T, error)

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// orderCaseInsensitive orders by the lowercased column and breaks ties by id.
func orderCaseInsensitive(table string, column string) []exp.OrderedExpression {
	return []exp.OrderedExpression{
		goqu.L("LOWER(?)", goqu.T(table).Col(column)).Asc(),
		goqu.T(table).Col(colID).Asc(),
	}
}

func (s *Store) buildSQL(ctx context.Context, stmt sqlBuilder) (string, []any, error) {
	sqlQuery, args, err := stmt.ToSQL()
	if err != nil {
		s.logError(ctx, logMsgBuildSQLFailed, err)
		return "", nil, errors.Join(rental.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, args, nil
}

// wrapDBError keeps domain sentinels from mapDBError and otherwise joins the infrastructure sentinel.
func wrapDBError(sentinel error, err error) error {
	if mapped := mapDBError(err); mapped != err {
		return mapped
	}

	return errors.Join(sentinel, err)
}

// queryAll runs a SELECT on db and scans every row. The whole call is observed as operation.
func queryAll[T any](
	ctx context.Context,
	s *Store,
	db adapters.Querier,
	operation string,
	stmt *goqu.SelectDataset,
	scan scanFunc[T],
) (result []T, err error) {
	observer, ctx := s.startOperation(ctx, operation)
	defer func() {
		observer.withRowCount(len(result))
		observer.finish(err)
	}()

	sqlQuery, args, err := s.buildSQL(ctx, stmt.Prepared(true))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, queryErr := db.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, wrapDBError(rental.ErrQueryingFailed, queryErr)
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logWarn(ctx, logMsgDBQueryFailed, logAttrError, closeErr.Error())
		}
	}()

	result = make([]T, 0)

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			s.logError(ctx, logMsgScanFailed, scanErr)
			return nil, scanErr
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, rowsErr, logAttrQuery, sqlQuery)
		return nil, wrapDBError(rental.ErrQueryingFailed, rowsErr)
	}

	return result, nil
}

// queryOne runs a SELECT limited to one row and reports whether a row was found.
func queryOne[T any](
	ctx context.Context,
	s *Store,
	db adapters.Querier,
	operation string,
	stmt *goqu.SelectDataset,
	scan scanFunc[T],
) (T, bool, error) {
	var zero T

	result, err := queryAll(ctx, s, db, operation, stmt.Limit(1), scan)
	if err != nil {
		return zero, false, err
	}

	if len(result) == 0 {
		return zero, false, nil
	}

	return result[0], true, nil
}

// insertReturningID runs an INSERT … RETURNING id and returns the assigned id.
func insertReturningID(
	ctx context.Context,
	s *Store,
	db adapters.Querier,
	operation string,
	stmt *goqu.InsertDataset,
) (int64, error) {
	ids, err := queryAllFromBuilder(ctx, s, db, operation, stmt.Returning(colID).Prepared(true), func(rows adapters.DBRows) (int64, error) {
		var id int64
		if scanErr := rows.Scan(&id); scanErr != nil {
			return 0, errors.Join(rental.ErrScanningDBRowFailed, scanErr)
		}

		return id, nil
	})
	if err != nil {
		return 0, err
	}

	if len(ids) != 1 {
		return 0, errors.Join(rental.ErrWritingFailed, errors.New("insert returned no id"))
	}

	return ids[0], nil
}

// queryAllFromBuilder is queryAll for statements that return rows but are not SELECTs.
// Write failures are reported as ErrWritingFailed.
func queryAllFromBuilder[T any](
	ctx context.Context,
	s *Store,
	db adapters.Querier,
	operation string,
	stmt sqlBuilder,
	scan scanFunc[T],
) (result []T, err error) {
	observer, ctx := s.startOperation(ctx, operation)
	defer func() { observer.finish(err) }()

	sqlQuery, args, err := s.buildSQL(ctx, stmt)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, queryErr := db.Query(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if queryErr != nil {
		s.logError(ctx, logMsgDBExecFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, wrapDBError(rental.ErrWritingFailed, queryErr)
	}

	defer func() { _ = rows.Close() }()

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		result = append(result, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		s.logError(ctx, logMsgDBExecFailed, rowsErr, logAttrQuery, sqlQuery)
		return nil, wrapDBError(rental.ErrWritingFailed, rowsErr)
	}

	return result, nil
}

// execute runs an INSERT, UPDATE or DELETE that returns no rows.
func execute(ctx context.Context, s *Store, db adapters.Querier, operation string, stmt sqlBuilder) (err error) {
	observer, ctx := s.startOperation(ctx, operation)
	defer func() { observer.finish(err) }()

	sqlQuery, args, err := s.buildSQL(ctx, stmt)
	if err != nil {
		return err
	}

	start := time.Now()
	_, execErr := db.Exec(ctx, sqlQuery, args...)
	s.logQueryWithDuration(ctx, sqlQuery, operation, time.Since(start))

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return wrapDBError(rental.ErrWritingFailed, execErr)
	}

	return nil
}
