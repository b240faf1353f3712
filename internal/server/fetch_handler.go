package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danmaku/internal/dao"
	"danmaku/internal/danmaku"
	"danmaku/pkg/log"
)

// handleFetch 按关键词抓取
// @Summary 按搜索关键词抓取弹幕
// @Description 搜索关键词并抓取排名前 n 个视频的弹幕，成功后替换当前数据库
// @Tags 抓取
// @Produce json
// @Param keyword query string true "搜索关键词"
// @Param n query int true "视频数量"
// @Success 200 {object} dao.FetchResponse "抓取成功"
// @Failure 400 {object} dao.Response "请求参数错误"
// @Failure 403 {object} dao.Response "n 非法"
// @Failure 500 {object} dao.Response "平台请求失败"
// @Router /api/fetch [get]
func (s *Server) handleFetch(c *gin.Context) {
	var req dao.FetchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	fresh := danmaku.NewStore()
	report, err := s.ingestor.IngestSearch(c.Request.Context(), fresh, req.Keyword, *req.N, s.credential())
	if err != nil {
		s.writeDomainError(c, err, 0, dao.CodeInvalidN)
		return
	}

	s.mu.Lock()
	s.store = fresh
	s.updateStoreGauge()
	s.mu.Unlock()

	c.JSON(http.StatusOK, dao.FetchResponse{
		Response: dao.NewResponse(dao.CodeSuccess),
		Report:   report,
	})
}

// handleFetchVideo 抓取单个视频
// @Summary 抓取单个视频的弹幕
// @Description 抓取指定视频的全部弹幕并写入当前数据库，已存在的视频会被覆盖
// @Tags 抓取
// @Produce json
// @Param bvid query string true "视频 BV 号"
// @Success 200 {object} dao.FetchVideoResponse "抓取成功"
// @Failure 400 {object} dao.Response "请求参数错误"
// @Failure 403 {object} dao.Response "视频不存在"
// @Failure 500 {object} dao.Response "平台请求失败"
// @Router /api/fetch_video [get]
func (s *Server) handleFetchVideo(c *gin.Context) {
	var req dao.FetchVideoRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	danmakus, err := s.ingestor.FetchVideo(c.Request.Context(), req.Bvid, s.credential())
	if err != nil {
		s.writeDomainError(c, err, dao.CodeBvidNotExist, 0)
		return
	}

	s.mu.Lock()
	s.store.Set(req.Bvid, danmakus)
	s.updateStoreGauge()
	s.mu.Unlock()

	c.JSON(http.StatusOK, dao.FetchVideoResponse{
		Response:     dao.NewResponse(dao.CodeSuccess),
		Bvid:         req.Bvid,
		DanmakuCount: len(danmakus),
	})
}

// handleClear 清空数据库
// @Summary 清空数据库
// @Tags 数据库
// @Produce json
// @Success 200 {object} dao.Response "清空成功"
// @Router /api/clear [get]
func (s *Server) handleClear(c *gin.Context) {
	s.mu.Lock()
	s.store.Clear()
	s.updateStoreGauge()
	s.mu.Unlock()

	if s.viewCache != nil {
		if err := s.viewCache.Purge(); err != nil {
			log.GetLogger(c).WithError(err).Warn("purge view cache")
		}
	}

	s.writeCode(c, dao.CodeSuccess)
}
