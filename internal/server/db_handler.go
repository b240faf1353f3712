package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"danmaku/internal/dao"
)

// handleDbInfo 数据库概况
// @Summary 获取数据库概况
// @Description 返回视频数量、BV 号列表以及每个视频和总计的弹幕数量
// @Tags 数据库
// @Produce json
// @Success 200 {object} dao.DbInfoResponse "获取成功"
// @Router /api/db_info [get]
func (s *Server) handleDbInfo(c *gin.Context) {
	resp := dao.DbInfoResponse{
		Response:          dao.NewResponse(dao.CodeSuccess),
		VideoDanmakuCount: make(map[string]int),
	}

	s.mu.RLock()
	resp.TotalVideoCount = s.store.Size()
	resp.VideoBvids = s.store.Bvids()
	for _, bvid := range resp.VideoBvids {
		n := s.store.Count(bvid)
		resp.VideoDanmakuCount[bvid] = n
		resp.TotalDanmakuCount += n
	}
	s.mu.RUnlock()

	c.JSON(http.StatusOK, resp)
}

// handleDbData 分页获取弹幕
// @Summary 分页获取视频弹幕
// @Description size<=0 返回全部弹幕，页码超出范围时返回最后一页
// @Tags 数据库
// @Produce json
// @Param bvid query string true "视频 BV 号"
// @Param size query int true "每页条数"
// @Param page query int true "页码，从 1 开始"
// @Success 200 {object} dao.DbDataResponse "获取成功"
// @Failure 400 {object} dao.Response "请求参数错误"
// @Failure 403 {object} dao.Response "视频不存在或页码非法"
// @Router /api/db_data [get]
func (s *Server) handleDbData(c *gin.Context) {
	var req dao.DbDataRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	s.mu.RLock()
	page, err := s.store.Page(req.Bvid, *req.Size, *req.Page)
	s.mu.RUnlock()
	if err != nil {
		s.writeDomainError(c, err, dao.CodeBvidNotExist, dao.CodeInvalidPage)
		return
	}

	c.JSON(http.StatusOK, dao.DbDataResponse{
		Response:   dao.NewResponse(dao.CodeSuccess),
		Data:       page.Data,
		PageSize:   page.PageSize,
		PageCount:  page.PageCount,
		TotalCount: page.TotalCount,
	})
}
