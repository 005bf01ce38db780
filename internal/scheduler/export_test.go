package scheduler

// SetPageSize 测试中缩小分页以覆盖多页
func (j *CampaignRefundJob) SetPageSize(n int) {
	j.pageSize = n
}
