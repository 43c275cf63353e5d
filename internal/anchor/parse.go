package anchor

import (
	"strconv"

	"github.com/internetofwater/nldi-go/internal/nldierrors"
)

func parseComid(raw string) (int64, error) {
	comid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nldierrors.Wrap(nldierrors.InvalidInput, "comid must be an integer", err)
	}
	return comid, nil
}
