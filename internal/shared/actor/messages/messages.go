package messages

// Reply 是地图 actor 的统一应答。失败时 Code 是 errx 错误码，Payload 为空。
type Reply struct {
	Ok      bool
	Code    string
	Message string
	Payload any
}

// Region 是半开矩形 [MinX,MaxX)x[MinY,MaxY)，零值表示整层。
type Region struct {
	MinX, MinY, MaxX, MaxY int
}

func (r Region) Whole() bool {
	return r == Region{}
}
