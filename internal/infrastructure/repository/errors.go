package repository

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

// translate maps storage errors onto the domain taxonomy. Anything it does
// not recognise is returned wrapped and classifies as internal.
func translate(err error, resource, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NewNotFoundError(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return domain.NewConflictError(conflict)
	}
	return errors.Wrap(err, resource+" storage")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func logError(logger *slog.Logger, event string, err error, attrs ...any) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "repository",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	logger.Error("repository operation failed", fields...)
	return err
}
