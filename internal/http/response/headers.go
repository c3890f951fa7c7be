package response

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/freelance-catalog/internal/filter"
	"github.com/ignatzorin/freelance-catalog/internal/pkg/apperror"
)

const TotalCountHeader = "X-Total-Count"

// Alerts выставляет заголовки уведомлений для клиента:
// X-<app>-alert и X-<app>-params при успехе, X-<app>-error при ошибке.
type Alerts struct {
	app string
}

func NewAlerts(app string) Alerts {
	return Alerts{app: app}
}

func (a Alerts) AlertHeader() string  { return "X-" + a.app + "-alert" }
func (a Alerts) ErrorHeader() string  { return "X-" + a.app + "-error" }
func (a Alerts) ParamsHeader() string { return "X-" + a.app + "-params" }

// Created ставит алерт <app>.<entity>.created.
func (a Alerts) Created(c *gin.Context, entity string, id int64) {
	a.entityAlert(c, entity, "created", id)
}

// Updated ставит алерт <app>.<entity>.updated.
func (a Alerts) Updated(c *gin.Context, entity string, id int64) {
	a.entityAlert(c, entity, "updated", id)
}

// Deleted ставит алерт <app>.<entity>.deleted.
func (a Alerts) Deleted(c *gin.Context, entity string, id int64) {
	a.entityAlert(c, entity, "deleted", id)
}

// Failure ставит заголовок error.<key>, если ошибка несёт ключ.
func (a Alerts) Failure(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Key == "" {
		return
	}
	c.Header(a.ErrorHeader(), "error."+appErr.Key)
	if appErr.Entity != "" {
		c.Header(a.ParamsHeader(), appErr.Entity)
	}
}

func (a Alerts) entityAlert(c *gin.Context, entity, action string, id int64) {
	c.Header(a.AlertHeader(), a.app+"."+entity+"."+action)
	c.Header(a.ParamsHeader(), strconv.FormatInt(id, 10))
}

// Page отвечает массивом элементов с заголовками X-Total-Count и Link.
func Page(c *gin.Context, items interface{}, total int64, page filter.Page) {
	c.Header(TotalCountHeader, strconv.FormatInt(total, 10))
	if link := LinkHeader(requestURL(c), page, total); link != "" {
		c.Header("Link", link)
	}
	OK(c, items)
}

// LinkHeader строит ссылки next/prev/last/first в формате RFC 5988.
func LinkHeader(base *url.URL, page filter.Page, total int64) string {
	last := page.TotalPages(total) - 1
	if last < 0 {
		last = 0
	}

	links := make([]string, 0, 4)
	if page.Number < last {
		links = append(links, pageLink(base, page.Number+1, page.Size, "next"))
	}
	if page.Number > 0 {
		links = append(links, pageLink(base, page.Number-1, page.Size, "prev"))
	}
	links = append(links,
		pageLink(base, last, page.Size, "last"),
		pageLink(base, 0, page.Size, "first"),
	)
	return strings.Join(links, ",")
}

func pageLink(base *url.URL, number, size int, rel string) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(number))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return fmt.Sprintf("<%s>; rel=\"%s\"", u.String(), rel)
}

func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	if u.Host == "" {
		u.Host = c.Request.Host
	}
	if u.Scheme == "" {
		u.Scheme = "http"
		if c.Request.TLS != nil {
			u.Scheme = "https"
		}
	}
	return &u
}
