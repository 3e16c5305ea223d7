package keychain

import (
	"context"
	"time"

	kdb "github.com/opst/taskboard/pkg/db"
	kpool "github.com/opst/taskboard/pkg/db/postgres/pool"
	"github.com/opst/taskboard/pkg/db/postgres/scanner"
	xe "github.com/opst/taskboard/pkg/errors"
)

type pgKeychain struct {
	pool kpool.Pool
}

var _ kdb.KeychainInterface = &pgKeychain{}

func New(pool kpool.Pool) kdb.KeychainInterface {
	return &pgKeychain{pool: pool}
}

type keyRow struct {
	Kid string
	Alg string
	Exp time.Time
	Key []byte
}

func load(ctx context.Context, conn kpool.Queryer, name string) ([]kdb.StoredKey, error) {
	rows, err := scanner.New[keyRow]().QueryAll(
		ctx, conn,
		`select "kid", "alg", "exp", "key" from "keychain_key" where "name" = $1 order by "exp" desc`,
		name,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	ret := make([]kdb.StoredKey, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, kdb.StoredKey(r))
	}
	return ret, nil
}

func (kc *pgKeychain) Load(ctx context.Context, name string) ([]kdb.StoredKey, error) {
	return load(ctx, kc.pool, name)
}

func (kc *pgKeychain) Lock(
	ctx context.Context, name string,
	criticalSection func(ctx context.Context, current []kdb.StoredKey) ([]kdb.StoredKey, error),
) error {
	return kpool.InTx(ctx, kc.pool, func(tx kpool.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`insert into "keychain" ("name") values ($1) on conflict ("name") do nothing`,
			name,
		); err != nil {
			return xe.Wrap(err)
		}
		if _, err := tx.Exec(
			ctx, `select "name" from "keychain" where "name" = $1 for update`, name,
		); err != nil {
			return xe.Wrap(err)
		}

		current, err := load(ctx, tx, name)
		if err != nil {
			return err
		}

		next, err := criticalSection(ctx, current)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `delete from "keychain_key" where "name" = $1`, name); err != nil {
			return xe.Wrap(err)
		}
		for _, k := range next {
			if _, err := tx.Exec(
				ctx,
				`insert into "keychain_key" ("name", "kid", "alg", "exp", "key") values ($1, $2, $3, $4, $5)`,
				name, k.Kid, k.Alg, k.Exp, k.Key,
			); err != nil {
				return xe.Wrap(err)
			}
		}
		return nil
	})
}
