package server

import (
	"bytes"
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"danmaku/internal/dao"
	"danmaku/internal/danmaku"
	"danmaku/internal/wordcloud"
)

// handleWordcloud 词云
// @Summary 生成弹幕词云
// @Description 默认对弹幕分词后统计词频，tokenize=false 时按整条弹幕统计
// @Tags 分析
// @Produce png
// @Param width query int false "图片宽度"
// @Param height query int false "图片高度"
// @Param tokenize query bool false "是否分词" default(true)
// @Success 200 {file} binary "PNG 图片"
// @Failure 400 {object} dao.Response "请求参数错误"
// @Failure 403 {object} dao.Response "数据库为空"
// @Router /api/wordcloud [get]
func (s *Server) handleWordcloud(c *gin.Context) {
	var req dao.WordcloudRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}
	width, height := req.Width, req.Height
	if width == 0 {
		width = s.conf.WordCloud.DefaultWidth
	}
	if height == 0 {
		height = s.conf.WordCloud.DefaultHeight
	}
	var tok danmaku.Tokenizer
	if req.Tokenize == nil || *req.Tokenize {
		tok = s.tokenizer
	}

	s.mu.RLock()
	table, err := s.store.Frequencies(tok)
	s.mu.RUnlock()
	if err != nil {
		s.writeDomainError(c, err, 0, 0)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPNG(&buf, table.Weights(), width, height); err != nil {
		if goerrors.Is(err, wordcloud.ErrInvalidSize) {
			s.writeError(c, http.StatusBadRequest, err)
			return
		}
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// handleTopDanmakus 高频弹幕
// @Summary 获取出现次数最多的弹幕
// @Tags 分析
// @Produce json
// @Param n query int true "返回条数"
// @Param tokenize query bool false "是否按分词统计" default(false)
// @Success 200 {object} dao.TopDanmakusResponse "获取成功"
// @Failure 400 {object} dao.Response "请求参数错误"
// @Failure 403 {object} dao.Response "数据库为空或 n 非法"
// @Router /api/top_danmakus [get]
func (s *Server) handleTopDanmakus(c *gin.Context) {
	var req dao.TopDanmakusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}
	var tok danmaku.Tokenizer
	if req.Tokenize {
		tok = s.tokenizer
	}

	s.mu.RLock()
	top, err := s.store.TopK(*req.N, tok)
	s.mu.RUnlock()
	if err != nil {
		s.writeDomainError(c, err, 0, dao.CodeInvalidN)
		return
	}

	c.JSON(http.StatusOK, dao.TopDanmakusResponse{
		Response:    dao.NewResponse(dao.CodeSuccess),
		TopDanmakus: top,
	})
}
