package library

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
)

const NumChorales = 371

var ErrUnknownChorale = errors.New("unknown chorale")

// maxScoreBytes bounds a downloaded score; chorale files are a few KB.
const maxScoreBytes = 4 << 20

// ChoraleURL points at the humdrum kern server's MIDI rendering of one of
// Bach's 371 chorales.
func ChoraleURL(number int) (string, error) {
	if number < 1 || number > NumChorales {
		return "", errors.Wrapf(ErrUnknownChorale, "number %d", number)
	}
	return fmt.Sprintf("https://kern.humdrum.org/cgi-bin/ksdata?file=chor%03d.krn&l=users/craig/classical/bach/371chorales&format=midi", number), nil
}

func ChoraleName(number int) string {
	return fmt.Sprintf("chor%03d", number)
}

func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "could not fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxScoreBytes))
	if err != nil {
		return nil, errors.Wrap(err, "could not read score body")
	}
	return data, nil
}
