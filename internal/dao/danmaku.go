package dao

import (
	"danmaku/internal/danmaku"
	"danmaku/internal/ingest"
)

// 业务错误码，非 0 时以 403 返回
const (
	CodeSuccess          = 0
	CodeEmptyDatabase    = 1
	CodeBvidNotExist     = 2
	CodeInvalidPage      = 3
	CodeInvalidN         = 4
	CodeValidationFailed = -1
)

var codeMessages = []string{
	"success",
	"empty database",
	"bvid does not exist",
	"invalid page number",
	"invalid n number",
}

func CodeMessage(code int) string {
	if code < 0 || code >= len(codeMessages) {
		return "unknown error"
	}
	return codeMessages[code]
}

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewResponse(code int) Response {
	return Response{Code: code, Message: CodeMessage(code)}
}

type FetchRequest struct {
	// 搜索关键词
	Keyword string `form:"keyword" binding:"required"`
	// 抓取视频数量
	N *int `form:"n" binding:"required"`
}

type FetchResponse struct {
	Response
	Report *ingest.SearchReport `json:"report"`
}

type FetchVideoRequest struct {
	Bvid string `form:"bvid" binding:"required,bvid"`
}

type FetchVideoResponse struct {
	Response
	Bvid         string `json:"bvid"`
	DanmakuCount int    `json:"danmaku_count"`
}

// WordcloudRequest 未指定宽高时使用配置中的默认值
type WordcloudRequest struct {
	Width    int   `form:"width" binding:"omitempty,min=1,max=4096"`
	Height   int   `form:"height" binding:"omitempty,min=1,max=4096"`
	Tokenize *bool `form:"tokenize"`
}

type TopDanmakusRequest struct {
	N        *int `form:"n" binding:"required"`
	Tokenize bool `form:"tokenize"`
}

type TopDanmakusResponse struct {
	Response
	TopDanmakus []danmaku.Frequency `json:"top_danmakus"`
}

type ExcelRequest struct {
	// 文件名，需以 .xlsx 结尾
	Filename string `form:"filename" binding:"required,xlsx"`
}

type ExportExcelResponse struct {
	Response
	Path string `json:"path"`
	// 上传到对象存储后的地址
	Object string `json:"object,omitempty"`
}

type DbInfoResponse struct {
	Response
	TotalVideoCount   int            `json:"total_video_count"`
	VideoBvids        []string       `json:"video_bvids"`
	VideoDanmakuCount map[string]int `json:"video_danmaku_count"`
	TotalDanmakuCount int            `json:"total_danmaku_count"`
}

type DbDataRequest struct {
	Bvid string `form:"bvid" binding:"required"`
	// 每页条数，<=0 表示全部
	Size *int `form:"size" binding:"required"`
	Page *int `form:"page" binding:"required"`
}

type DbDataResponse struct {
	Response
	Data       []string `json:"data"`
	PageSize   int      `json:"page_size"`
	PageCount  int      `json:"page_count"`
	TotalCount int      `json:"total_count"`
}
