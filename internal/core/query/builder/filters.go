package builder

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/satishbabariya/datatables-go/internal/core/query/domain"
)

// LikeEscape is the escape character used in generated LIKE predicates.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(
	LikeEscape, LikeEscape+LikeEscape,
	"%", LikeEscape+"%",
	"_", LikeEscape+"_",
)

// LikePattern escapes wildcards in term and adds them according to position.
func LikePattern(term string, position domain.LikePosition) string {
	escaped := likeEscaper.Replace(term)
	switch position {
	case domain.LikeBefore:
		return "%" + escaped
	case domain.LikeAfter:
		return escaped + "%"
	default:
		return "%" + escaped + "%"
	}
}

func likeExpr(column, term string, position domain.LikePosition) sq.Sqlizer {
	return sq.Expr(column+" LIKE ? ESCAPE '"+LikeEscape+"'", LikePattern(term, position))
}
