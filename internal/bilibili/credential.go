package bilibili

import "net/http"

// Credential carries the session cookies forwarded to the platform. It is
// never inspected beyond turning its fields into cookies.
type Credential struct {
	SESSDATA   string `yaml:"sessdata" json:"sessdata,omitempty"`
	BiliJct    string `yaml:"biliJct" json:"biliJct,omitempty"`
	Buvid3     string `yaml:"buvid3" json:"buvid3,omitempty"`
	DedeUserID string `yaml:"dedeUserID" json:"dedeUserID,omitempty"`
}

func (c *Credential) IsEmpty() bool {
	return c == nil || *c == Credential{}
}

func (c *Credential) Cookies() []*http.Cookie {
	if c == nil {
		return nil
	}
	var cookies []*http.Cookie
	add := func(name, value string) {
		if value != "" {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value})
		}
	}
	add("SESSDATA", c.SESSDATA)
	add("bili_jct", c.BiliJct)
	add("buvid3", c.Buvid3)
	add("DedeUserID", c.DedeUserID)
	return cookies
}
