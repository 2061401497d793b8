package fetch

import (
	"github.com/valyala/fasthttp"

	"github.com/keket-go/keket/assetpath"
	"github.com/keket-go/keket/components"
	"github.com/keket-go/keket/keketerr"
)

// FromHTTP marks an entity as having been fetched over HTTP(S).
type FromHTTP struct {
	URL        string
	StatusCode int
}

// sharedClient is reused across every HTTP fetch instance rather than
// dialing a fresh client per request.
var sharedClient = &fasthttp.Client{
	Name: "keket-fetch",
}

// HTTP fetches http(s):// paths with valyala/fasthttp. The request URL
// is the AssetPath's Protocol, "://", and its Path joined together, so
// "http://host/a.png" (Protocol "http", Path "host/a.png") requests
// that same URL.
type HTTP struct {
	client *fasthttp.Client
}

func NewHTTP() *HTTP { return &HTTP{client: sharedClient} }

func (h *HTTP) LoadBytes(path assetpath.AssetPath) (Bundle, error) {
	url := path.Protocol() + "://" + path.Path()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := h.client.Do(req, resp); err != nil {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "http fetch %q: %v", url, err)
	}
	if resp.StatusCode() >= 400 {
		return nil, keketerr.Wrapf(keketerr.ErrFetchFailure, "http fetch %q: status %d", url, resp.StatusCode())
	}

	// Body() is only valid until the next client call; copy it out.
	data := append([]byte(nil), resp.Body()...)

	return Bundle{
		components.BytesReadyToProcess{Bytes: data},
		FromHTTP{URL: url, StatusCode: resp.StatusCode()},
	}, nil
}
