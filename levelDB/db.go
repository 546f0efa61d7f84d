package levelDB

import (
	"github.com/cloudflare/cfssl/log"
	"github.com/syndtr/goleveldb/leveldb"
)

var db *leveldb.DB
var err error

func InitDB(path string) {
	db, err = leveldb.OpenFile("levelDB/db/path/"+path, nil)
	if err != nil {
		log.Error("db init err:", err)
	}
}

// 未初始化时（纯内存运行、单元测试）跳过持久化
func DBGet(key string) []byte {
	if db == nil {
		return nil
	}
	data, err := db.Get([]byte(key), nil)
	if err != nil {
		log.Error("db get err:", err)
		return nil
	}
	return data
}

func DBPut(key string, value []byte) {
	if db == nil {
		return
	}
	err = db.Put([]byte(key), value, nil)
	if err != nil {
		log.Error("db put err:", err)
	}
}

func DBDelete(key string) {
	if db == nil {
		return
	}
	err = db.Delete([]byte(key), nil)
	if err != nil {
		log.Error("db delete err", err)
	}
}
