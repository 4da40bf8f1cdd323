package events

import "github.com/atomicstack/trammel/internal/logging"

type TorrentTracer struct{}

var Torrent = TorrentTracer{}

func (TorrentTracer) Action(action string, ids []int64) {
	logging.Trace("torrent.action", map[string]interface{}{"action": action, "ids": ids})
}

func (TorrentTracer) Added(name string, duplicate bool) {
	logging.Trace("torrent.added", map[string]interface{}{"name": name, "duplicate": duplicate})
}

func (TorrentTracer) Removed(ids []int64, deleteData bool) {
	logging.Trace("torrent.removed", map[string]interface{}{"ids": ids, "delete_data": deleteData})
}

func (TorrentTracer) Moved(ids []int64, dest string) {
	logging.Trace("torrent.moved", map[string]interface{}{"ids": ids, "dest": dest})
}

func (TorrentTracer) Renamed(id int64, name string) {
	logging.Trace("torrent.renamed", map[string]interface{}{"id": id, "name": name})
}
