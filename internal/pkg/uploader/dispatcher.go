package uploader

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	PathProxied = "proxied"
	PathDirect  = "direct"
)

// File 待上传文件
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f *File) Size() int64 { return int64(len(f.Data)) }

// Result 上传结果，Path 为最终成功的路径
type Result struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
	Path        string `json:"-"`
}

type Options struct {
	ServerURL        string
	Token            string
	Rules            Rules
	RoutingThreshold int64
	ProxiedTimeout   time.Duration
}

// Dispatcher 按大小与服务端信号选择上传路径
type Dispatcher struct {
	api     *resty.Client
	storage *resty.Client
	opts    Options
}

func New(opts Options) *Dispatcher {
	if opts.RoutingThreshold <= 0 {
		opts.RoutingThreshold = DefaultRoutingThreshold
	}
	if opts.ProxiedTimeout <= 0 {
		opts.ProxiedTimeout = DefaultProxiedTimeout
	}
	if len(opts.Rules.AllowedTypes) == 0 {
		opts.Rules = DefaultRules()
	}

	api := resty.New().SetBaseURL(strings.TrimSuffix(opts.ServerURL, "/"))
	if opts.Token != "" {
		api.SetAuthToken(opts.Token)
	}
	return &Dispatcher{
		api: api,
		// 预签名地址自带鉴权，不能携带 Authorization 头
		storage: resty.New(),
		opts:    opts,
	}
}

// Upload 校验后选择路径上传。除代理拒收时改走一次直传外不做重试
func (d *Dispatcher) Upload(ctx context.Context, f *File) (*Result, error) {
	if err := d.opts.Rules.Check(f.ContentType, f.Size()); err != nil {
		return nil, err
	}

	if f.Size() > d.opts.RoutingThreshold {
		return d.direct(ctx, f)
	}

	res, err := d.proxied(ctx, f)
	if err == nil {
		return res, nil
	}
	var ue *Error
	if errors.As(err, &ue) && ue.UseDirect {
		return d.direct(ctx, f)
	}
	return nil, err
}

func (d *Dispatcher) proxied(ctx context.Context, f *File) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.ProxiedTimeout)
	defer cancel()

	var out ProxiedResponse
	resp, err := d.api.R().
		SetContext(ctx).
		SetMultipartField("file", f.Name, f.ContentType, bytes.NewReader(f.Data)).
		SetResult(&out).
		SetError(&ErrorBody{}).
		Post(ProxiedPath)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, timeoutError(errors.Wrap(err, "proxied upload"))
		}
		return nil, networkError(errors.Wrap(err, "proxied upload"))
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return &Result{URL: out.URL, DownloadURL: orURL(out.DownloadURL, out.URL), Path: PathProxied}, nil
}

func (d *Dispatcher) direct(ctx context.Context, f *File) (*Result, error) {
	var auth DirectAuthorization
	resp, err := d.api.R().
		SetContext(ctx).
		SetBody(&DirectRequest{
			Pathname:    f.Name,
			ContentType: f.ContentType,
			Size:        f.Size(),
		}).
		SetResult(&auth).
		SetError(&ErrorBody{}).
		Post(DirectPath)
	if err != nil {
		return nil, networkError(errors.Wrap(err, "direct upload handshake"))
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}

	method := auth.Method
	if method == "" {
		method = http.MethodPut
	}
	resp, err = d.storage.R().
		SetContext(ctx).
		SetHeaders(auth.Headers).
		SetBody(f.Data).
		Execute(method, auth.UploadURL)
	if err != nil {
		return nil, networkError(errors.Wrap(err, "direct upload to storage"))
	}
	if resp.IsError() {
		return nil, storageError(resp)
	}

	var done CompleteResponse
	resp, err = d.api.R().
		SetContext(ctx).
		SetBody(&CompleteRequest{Token: auth.Token}).
		SetResult(&done).
		SetError(&ErrorBody{}).
		Post(CompletePath)
	if err != nil {
		return nil, networkError(errors.Wrap(err, "direct upload completion"))
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return &Result{URL: done.URL, DownloadURL: orURL(done.DownloadURL, done.URL), Path: PathDirect}, nil
}

func networkError(err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return timeoutError(err)
	}
	return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
}

func timeoutError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: msgTimeout, Err: err}
}

// statusError 服务端错误响应映射为失败分类
func statusError(resp *resty.Response) *Error {
	body, _ := resp.Error().(*ErrorBody)
	if body == nil {
		body = &ErrorBody{}
	}
	e := &Error{Status: resp.StatusCode(), Message: body.Error, Err: errors.Errorf("%s %s: %s", resp.Request.Method, resp.Request.URL, resp.Status())}

	switch resp.StatusCode() {
	case http.StatusUnsupportedMediaType:
		e.Kind = KindUnsupportedType
	case http.StatusBadRequest:
		// 400 只有类型被拒时才归为类型错误，其余按服务端消息原样提示
		if body.Error == msgUnsupportedType {
			e.Kind = KindUnsupportedType
		} else {
			e.Kind = KindNetwork
		}
	case http.StatusRequestEntityTooLarge:
		e.Kind = KindTooLarge
		e.UseDirect = body.ShouldUseDirectUpload
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindAuth
	default:
		e.Kind = KindNetwork
	}
	if e.Message == "" {
		e.Message = UserMessage(&Error{Kind: e.Kind})
	}
	return e
}

// storageError 对象存储拒绝：403 多为签名或配置问题，其余按临时故障处理
func storageError(resp *resty.Response) *Error {
	e := &Error{Status: resp.StatusCode(), Err: errors.Errorf("storage responded %s", resp.Status())}
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		e.Kind = KindAuth
		e.Message = "Storage rejected the upload authorization."
	case http.StatusRequestEntityTooLarge:
		e.Kind = KindTooLarge
		e.Message = "File is too large."
	default:
		e.Kind = KindNetwork
		e.Message = msgNetwork
	}
	return e
}

func orURL(download, url string) string {
	if download != "" {
		return download
	}
	return url
}
